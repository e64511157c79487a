package handlers

import (
	"net/url"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/link-clicks/internal/links"
)

// LinkBody is the JSON view of a link without its click log.
type LinkBody struct {
	ID              string              `doc:"Short link identifier"               example:"V1StGXR8_Z"          json:"id"`
	UserID          string              `doc:"Owner of the link"                                                 json:"userId"`
	OriginalURL     string              `doc:"Destination URL"                     example:"https://example.com" json:"originalUrl"`
	TargetParamName string              `doc:"Query parameter read on redirect"    example:"src"                 json:"targetParamName"`
	TargetValues    []links.TargetValue `doc:"Catalogue of expected attributions"                                json:"targetValues"`
	CreatedAt       time.Time           `doc:"Creation time"                                                     json:"createdAt"`
}

// LinkDetailBody is a link with its full click log.
type LinkDetailBody struct {
	LinkBody

	Clicks []links.ClickEvent `doc:"Click log in arrival order" json:"clicks"`
}

func newLinkBody(l *links.Link) LinkBody {
	values := l.TargetValues
	if values == nil {
		values = []links.TargetValue{}
	}

	return LinkBody{
		ID:              string(l.ID),
		UserID:          string(l.OwnerID),
		OriginalURL:     l.OriginalURL,
		TargetParamName: l.TargetParamName,
		TargetValues:    values,
		CreatedAt:       l.CreatedAt,
	}
}

func newLinkBodies(ls []links.Link) []LinkBody {
	out := make([]LinkBody, 0, len(ls))
	for i := range ls {
		out = append(out, newLinkBody(&ls[i]))
	}

	return out
}

// CreateLinkRequest is the request for creating a link. Required fields are checked by the
// link service so every validation error carries the same shape.
type CreateLinkRequest struct {
	Body struct {
		UserID          string              `doc:"Registered owner id"                  json:"userId,omitempty"`
		OriginalURL     string              `doc:"Destination URL"                      example:"https://example.com/landing" json:"originalUrl,omitempty"`
		TargetParamName string              `doc:"Attribution query parameter, default t" example:"src"                      json:"targetParamName,omitempty"`
		TargetValues    []links.TargetValue `doc:"Expected attribution values"          json:"targetValues,omitempty"`
	}
}

// LinkResponse returns a single link.
type LinkResponse struct {
	Body LinkBody
}

// LinkDetailResponse returns a link with its click log.
type LinkDetailResponse struct {
	Body LinkDetailBody
}

// ListLinksResponse returns links without click logs.
type ListLinksResponse struct {
	Body []LinkBody
}

// LinkIDRequest addresses a link by id.
type LinkIDRequest struct {
	ID string `doc:"Short link identifier" path:"id"`
}

// UpdateLinkRequest is a partial update; absent fields are left untouched.
type UpdateLinkRequest struct {
	ID   string `doc:"Short link identifier" path:"id"`
	Body struct {
		OriginalURL     *string              `doc:"New destination URL"                                     json:"originalUrl,omitempty"`
		TargetParamName *string              `doc:"New attribution parameter, empty resets to t"            json:"targetParamName,omitempty"`
		TargetValues    *[]links.TargetValue `doc:"Replaces the catalogue, an empty list clears it"         json:"targetValues,omitempty"`
	}
}

func (r *UpdateLinkRequest) patch() links.Patch {
	return links.Patch{
		OriginalURL:     r.Body.OriginalURL,
		TargetParamName: r.Body.TargetParamName,
		TargetValues:    r.Body.TargetValues,
	}
}

// fields names the attributes the request touches.
func (r *UpdateLinkRequest) fields() []string {
	var fields []string

	if r.Body.OriginalURL != nil {
		fields = append(fields, "originalUrl")
	}

	if r.Body.TargetParamName != nil {
		fields = append(fields, "targetParamName")
	}

	if r.Body.TargetValues != nil {
		fields = append(fields, "targetValues")
	}

	return fields
}

// UserLinksRequest addresses an owner.
type UserLinksRequest struct {
	UserID string `doc:"Owner id" path:"userId"`
}

// CreateUserRequest registers an owner. An empty id is replaced by a generated one.
type CreateUserRequest struct {
	Body struct {
		ID string `doc:"Owner id, generated when empty" json:"id,omitempty"`
	}
}

// CreateUserResponse returns the registered owner id.
type CreateUserResponse struct {
	Body struct {
		ID string `doc:"Owner id" json:"id"`
	}
}

// RedirectRequest resolves a short link. The raw query is captured whole because the
// attribution parameter name is stored per link.
type RedirectRequest struct {
	ID string `doc:"Short link identifier" path:"id"`

	query url.Values
}

// Resolve implements huma.Resolver.
func (r *RedirectRequest) Resolve(ctx huma.Context) []error {
	u := ctx.URL()
	r.query = u.Query()

	return nil
}

// RedirectResponse sends the visitor to the destination.
type RedirectResponse struct {
	Status   int
	Location string `header:"Location"`
}

// StatsResponse returns click counts per attribution value.
type StatsResponse struct {
	Body struct {
		ClickStats map[string]int `doc:"Clicks per attribution value" json:"clickStats"`
	}
}

// BreakdownResponse returns {source, clicks} entries in first-seen order.
type BreakdownResponse struct {
	Body []links.SourceClicks
}
