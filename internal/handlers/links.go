package handlers

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/serroba/link-clicks/internal/audit"
	"github.com/serroba/link-clicks/internal/links"
	"github.com/serroba/link-clicks/internal/messaging"
	"go.uber.org/zap"
)

// LifecyclePublishers are the publish functions for link lifecycle events.
type LifecyclePublishers struct {
	Created messaging.Publish[audit.LinkCreatedEvent]
	Updated messaging.Publish[audit.LinkUpdatedEvent]
	Deleted messaging.Publish[audit.LinkDeletedEvent]
}

// LinkHandler handles link and owner operations.
type LinkHandler struct {
	service *links.Service
	publish LifecyclePublishers
	logger  *zap.Logger
}

// NewLinkHandler creates a new link handler.
func NewLinkHandler(service *links.Service, publish LifecyclePublishers, logger *zap.Logger) *LinkHandler {
	return &LinkHandler{
		service: service,
		publish: publish,
		logger:  logger,
	}
}

func (h *LinkHandler) CreateLink(ctx context.Context, req *CreateLinkRequest) (*LinkResponse, error) {
	link, err := h.service.Create(ctx, links.Spec{
		OwnerID:         links.OwnerID(req.Body.UserID),
		OriginalURL:     req.Body.OriginalURL,
		TargetParamName: req.Body.TargetParamName,
		TargetValues:    req.Body.TargetValues,
	})
	if err != nil {
		return nil, h.fail("create link", err)
	}

	meta := RequestMetaFromContext(ctx)
	event := &audit.LinkCreatedEvent{
		LinkID:          string(link.ID),
		OwnerID:         string(link.OwnerID),
		OriginalURL:     link.OriginalURL,
		TargetParamName: link.TargetParamName,
		CreatedAt:       link.CreatedAt,
		ClientIP:        meta.ClientIP,
		UserAgent:       meta.UserAgent,
	}

	if err = h.publish.Created(ctx, event); err != nil {
		h.logger.Error("failed to publish link created event",
			zap.String("linkId", event.LinkID),
			zap.Error(err),
		)
	}

	return &LinkResponse{Body: newLinkBody(link)}, nil
}

func (h *LinkHandler) GetLink(ctx context.Context, req *LinkIDRequest) (*LinkDetailResponse, error) {
	link, err := h.service.Get(ctx, links.ID(req.ID))
	if err != nil {
		return nil, h.fail("get link", err, zap.String("linkId", req.ID))
	}

	clicks := link.Clicks
	if clicks == nil {
		clicks = []links.ClickEvent{}
	}

	return &LinkDetailResponse{Body: LinkDetailBody{LinkBody: newLinkBody(link), Clicks: clicks}}, nil
}

func (h *LinkHandler) ListLinks(ctx context.Context, _ *struct{}) (*ListLinksResponse, error) {
	all, err := h.service.List(ctx)
	if err != nil {
		return nil, h.fail("list links", err)
	}

	return &ListLinksResponse{Body: newLinkBodies(all)}, nil
}

func (h *LinkHandler) ListUserLinks(ctx context.Context, req *UserLinksRequest) (*ListLinksResponse, error) {
	owned, err := h.service.ListByOwner(ctx, links.OwnerID(req.UserID))
	if err != nil {
		return nil, h.fail("list user links", err, zap.String("userId", req.UserID))
	}

	return &ListLinksResponse{Body: newLinkBodies(owned)}, nil
}

func (h *LinkHandler) UpdateLink(ctx context.Context, req *UpdateLinkRequest) (*LinkResponse, error) {
	link, err := h.service.Update(ctx, links.ID(req.ID), req.patch())
	if err != nil {
		return nil, h.fail("update link", err, zap.String("linkId", req.ID))
	}

	event := &audit.LinkUpdatedEvent{
		LinkID:    req.ID,
		Fields:    req.fields(),
		UpdatedAt: time.Now().UTC(),
		ClientIP:  RequestMetaFromContext(ctx).ClientIP,
	}

	if err = h.publish.Updated(ctx, event); err != nil {
		h.logger.Error("failed to publish link updated event",
			zap.String("linkId", event.LinkID),
			zap.Error(err),
		)
	}

	return &LinkResponse{Body: newLinkBody(link)}, nil
}

func (h *LinkHandler) DeleteLink(ctx context.Context, req *LinkIDRequest) (*struct{}, error) {
	if err := h.service.Delete(ctx, links.ID(req.ID)); err != nil {
		return nil, h.fail("delete link", err, zap.String("linkId", req.ID))
	}

	event := &audit.LinkDeletedEvent{
		LinkID:    req.ID,
		DeletedAt: time.Now().UTC(),
		ClientIP:  RequestMetaFromContext(ctx).ClientIP,
	}

	if err := h.publish.Deleted(ctx, event); err != nil {
		h.logger.Error("failed to publish link deleted event",
			zap.String("linkId", event.LinkID),
			zap.Error(err),
		)
	}

	return &struct{}{}, nil
}

func (h *LinkHandler) CreateUser(ctx context.Context, req *CreateUserRequest) (*CreateUserResponse, error) {
	id := req.Body.ID
	if id == "" {
		id = uuid.NewString()
	}

	if err := h.service.RegisterOwner(ctx, links.OwnerID(id)); err != nil {
		return nil, h.fail("register user", err, zap.String("userId", id))
	}

	resp := &CreateUserResponse{}
	resp.Body.ID = id

	return resp, nil
}

// fail logs errors the caller cannot fix and maps err to a problem response.
func (h *LinkHandler) fail(action string, err error, fields ...zap.Field) error {
	return logAndMap(h.logger, action, err, fields...)
}
