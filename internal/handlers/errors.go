package handlers

import (
	"errors"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/link-clicks/internal/links"
)

// problem maps a domain error to an HTTP problem response.
func problem(err error) error {
	var verr *links.ValidationError

	switch {
	case errors.As(err, &verr):
		return huma.Error422UnprocessableEntity("validation failed", &huma.ErrorDetail{
			Message:  verr.Message,
			Location: "body." + verr.Field,
		})
	case errors.Is(err, links.ErrOwnerNotFound):
		return huma.Error404NotFound("user not found")
	case errors.Is(err, links.ErrLinkNotFound), errors.Is(err, links.ErrNotFound):
		return huma.Error404NotFound("link not found")
	case errors.Is(err, links.ErrStoreFailure):
		return huma.Error503ServiceUnavailable("store unavailable")
	default:
		return huma.Error500InternalServerError("internal error")
	}
}
