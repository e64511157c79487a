package links

import (
	"context"
	"net/url"
	"time"
)

// Redirector resolves short links and records the visit before handing out the destination.
type Redirector struct {
	links         Repository
	clicks        ClickLog
	appendTimeout time.Duration
}

// NewRedirector creates a redirector. A positive appendTimeout bounds the click append; a
// timed out append fails the redirect.
func NewRedirector(links Repository, clicks ClickLog, appendTimeout time.Duration) *Redirector {
	return &Redirector{
		links:         links,
		clicks:        clicks,
		appendTimeout: appendTimeout,
	}
}

// Resolve looks up the link, appends a click attributed to the value of the link's target
// parameter in query and returns the destination URL unchanged. A missing parameter is
// recorded as the empty attribution value. No destination is returned unless the click was
// stored.
func (r *Redirector) Resolve(ctx context.Context, id ID, query url.Values, ipAddress string) (string, error) {
	const op = "links.Redirector.Resolve"

	link, err := r.links.Get(ctx, id)
	if err != nil {
		return "", storeFailure(op, err)
	}

	event := ClickEvent{
		IPAddress:        ipAddress,
		TargetParamValue: query.Get(link.TargetParamName),
	}

	if err = validateStruct(event); err != nil {
		return "", err
	}

	appendCtx := ctx

	if r.appendTimeout > 0 {
		var cancel context.CancelFunc

		appendCtx, cancel = context.WithTimeout(ctx, r.appendTimeout)
		defer cancel()
	}

	if err = r.clicks.Append(appendCtx, id, event); err != nil {
		return "", storeFailure(op, err)
	}

	return link.OriginalURL, nil
}
