package links

import (
	"context"
	"time"
)

// IDGenerator generates unique link identifiers.
type IDGenerator func() string

// Service implements the link store operations on top of a Repository, checking owners and
// validating input before anything is written.
type Service struct {
	links  Repository
	clicks ClickLog
	owners Owners
	newID  IDGenerator
}

// NewService creates a link service.
func NewService(links Repository, clicks ClickLog, owners Owners, newID IDGenerator) *Service {
	return &Service{
		links:  links,
		clicks: clicks,
		owners: owners,
		newID:  newID,
	}
}

// Create validates spec, checks that the owner exists and stores a new link.
func (s *Service) Create(ctx context.Context, spec Spec) (*Link, error) {
	const op = "links.Service.Create"

	if err := validateStruct(spec); err != nil {
		return nil, err
	}

	if err := s.requireOwner(ctx, op, spec.OwnerID); err != nil {
		return nil, err
	}

	paramName := spec.TargetParamName
	if paramName == "" {
		paramName = DefaultTargetParamName
	}

	link := &Link{
		ID:              ID(s.newID()),
		OwnerID:         spec.OwnerID,
		OriginalURL:     spec.OriginalURL,
		TargetParamName: paramName,
		TargetValues:    append([]TargetValue{}, spec.TargetValues...),
		CreatedAt:       time.Now().UTC(),
	}

	if err := s.links.Create(ctx, link); err != nil {
		return nil, storeFailure(op, err)
	}

	return link, nil
}

// Get returns the link with its click log.
func (s *Service) Get(ctx context.Context, id ID) (*Link, error) {
	const op = "links.Service.Get"

	link, err := s.links.Get(ctx, id)
	if err != nil {
		return nil, storeFailure(op, err)
	}

	clicks, err := s.clicks.ReadAll(ctx, id)
	if err != nil {
		return nil, storeFailure(op, err)
	}

	link.Clicks = clicks

	return link, nil
}

// List returns every link, without click logs.
func (s *Service) List(ctx context.Context) ([]Link, error) {
	all, err := s.links.List(ctx)
	if err != nil {
		return nil, storeFailure("links.Service.List", err)
	}

	return all, nil
}

// ListByOwner returns the links of a registered owner, without click logs.
func (s *Service) ListByOwner(ctx context.Context, owner OwnerID) ([]Link, error) {
	const op = "links.Service.ListByOwner"

	if err := s.requireOwner(ctx, op, owner); err != nil {
		return nil, err
	}

	owned, err := s.links.ListByOwner(ctx, owner)
	if err != nil {
		return nil, storeFailure(op, err)
	}

	return owned, nil
}

// Update applies a partial update. An empty targetParamName resets it to the default.
func (s *Service) Update(ctx context.Context, id ID, patch Patch) (*Link, error) {
	const op = "links.Service.Update"

	if patch.OriginalURL != nil && *patch.OriginalURL == "" {
		return nil, &ValidationError{Field: "originalUrl", Message: messageForTag("required")}
	}

	if err := validateStruct(patch); err != nil {
		return nil, err
	}

	if patch.TargetParamName != nil && *patch.TargetParamName == "" {
		name := DefaultTargetParamName
		patch.TargetParamName = &name
	}

	link, err := s.links.Update(ctx, id, patch)
	if err != nil {
		return nil, storeFailure(op, err)
	}

	return link, nil
}

// Delete removes a link and, with it, its click log.
func (s *Service) Delete(ctx context.Context, id ID) error {
	if err := s.links.Delete(ctx, id); err != nil {
		return storeFailure("links.Service.Delete", err)
	}

	return nil
}

// RegisterOwner records an owner id so links can reference it.
func (s *Service) RegisterOwner(ctx context.Context, owner OwnerID) error {
	if owner == "" {
		return &ValidationError{Field: "id", Message: messageForTag("required")}
	}

	if err := s.owners.Register(ctx, owner); err != nil {
		return storeFailure("links.Service.RegisterOwner", err)
	}

	return nil
}

func (s *Service) requireOwner(ctx context.Context, op string, owner OwnerID) error {
	ok, err := s.owners.Exists(ctx, owner)
	if err != nil {
		return storeFailure(op, err)
	}

	if !ok {
		return ErrOwnerNotFound
	}

	return nil
}
