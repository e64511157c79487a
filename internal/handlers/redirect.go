package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/serroba/link-clicks/internal/links"
	"go.uber.org/zap"
)

// RedirectHandler resolves short links and serves their click statistics.
type RedirectHandler struct {
	redirector *links.Redirector
	aggregator *links.Aggregator
	logger     *zap.Logger
}

// NewRedirectHandler creates a new redirect handler.
func NewRedirectHandler(redirector *links.Redirector, aggregator *links.Aggregator, logger *zap.Logger) *RedirectHandler {
	return &RedirectHandler{
		redirector: redirector,
		aggregator: aggregator,
		logger:     logger,
	}
}

// Redirect records the click, then answers 302. Nothing is redirected if the click was not stored.
func (h *RedirectHandler) Redirect(ctx context.Context, req *RedirectRequest) (*RedirectResponse, error) {
	meta := RequestMetaFromContext(ctx)

	dest, err := h.redirector.Resolve(ctx, links.ID(req.ID), req.query, meta.ClientIP)
	if err != nil {
		return nil, logAndMap(h.logger, "redirect", err,
			zap.String("linkId", req.ID),
			zap.String("clientIp", meta.ClientIP),
		)
	}

	return &RedirectResponse{
		Status:   http.StatusFound,
		Location: dest,
	}, nil
}

func (h *RedirectHandler) Stats(ctx context.Context, req *LinkIDRequest) (*StatsResponse, error) {
	counts, err := h.aggregator.CountsByTarget(ctx, links.ID(req.ID))
	if err != nil {
		return nil, logAndMap(h.logger, "click stats", err, zap.String("linkId", req.ID))
	}

	resp := &StatsResponse{}
	resp.Body.ClickStats = counts

	return resp, nil
}

func (h *RedirectHandler) ClicksBySource(ctx context.Context, req *LinkIDRequest) (*BreakdownResponse, error) {
	breakdown, err := h.aggregator.BySourceBreakdown(ctx, links.ID(req.ID))
	if err != nil {
		return nil, logAndMap(h.logger, "clicks by source", err, zap.String("linkId", req.ID))
	}

	return &BreakdownResponse{Body: breakdown}, nil
}

// logAndMap logs store failures and unexpected errors; not-found and validation errors are
// the caller's and are only mapped.
func logAndMap(logger *zap.Logger, action string, err error, fields ...zap.Field) error {
	if !errors.Is(err, links.ErrNotFound) && !errors.Is(err, links.ErrValidation) {
		logger.Error(action+" failed", append(fields, zap.Error(err))...)
	}

	return problem(err)
}
