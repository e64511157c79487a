package handlers

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// RegisterRoutes registers the link, owner, redirect and statistics routes.
func RegisterRoutes(api huma.API, linkHandler *LinkHandler, redirectHandler *RedirectHandler) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-link",
		Method:        http.MethodPost,
		Path:          "/links",
		Summary:       "Create link",
		Description:   "Creates a short link for a registered user. targetParamName defaults to t.",
		Tags:          []string{"Links"},
		DefaultStatus: http.StatusCreated,
	}, linkHandler.CreateLink)

	huma.Register(api, huma.Operation{
		OperationID: "list-links",
		Method:      http.MethodGet,
		Path:        "/links",
		Summary:     "List links",
		Tags:        []string{"Links"},
	}, linkHandler.ListLinks)

	huma.Register(api, huma.Operation{
		OperationID: "get-link",
		Method:      http.MethodGet,
		Path:        "/links/{id}",
		Summary:     "Get link",
		Description: "Returns the link with its click log in arrival order.",
		Tags:        []string{"Links"},
	}, linkHandler.GetLink)

	huma.Register(api, huma.Operation{
		OperationID: "update-link",
		Method:      http.MethodPut,
		Path:        "/links/{id}",
		Summary:     "Update link",
		Description: "Partially updates originalUrl, targetParamName and targetValues.",
		Tags:        []string{"Links"},
	}, linkHandler.UpdateLink)

	huma.Register(api, huma.Operation{
		OperationID:   "delete-link",
		Method:        http.MethodDelete,
		Path:          "/links/{id}",
		Summary:       "Delete link",
		Description:   "Deletes the link and its whole click log.",
		Tags:          []string{"Links"},
		DefaultStatus: http.StatusNoContent,
	}, linkHandler.DeleteLink)

	huma.Register(api, huma.Operation{
		OperationID: "link-stats",
		Method:      http.MethodGet,
		Path:        "/links/{id}/stats",
		Summary:     "Clicks per attribution value",
		Tags:        []string{"Stats"},
	}, redirectHandler.Stats)

	huma.Register(api, huma.Operation{
		OperationID: "link-clicks-by-source",
		Method:      http.MethodGet,
		Path:        "/links/{id}/clicks-by-source",
		Summary:     "Clicks by source",
		Description: "Returns one entry per attribution value in first-seen order.",
		Tags:        []string{"Stats"},
	}, redirectHandler.ClicksBySource)

	huma.Register(api, huma.Operation{
		OperationID:   "create-user",
		Method:        http.MethodPost,
		Path:          "/users",
		Summary:       "Register user",
		Tags:          []string{"Users"},
		DefaultStatus: http.StatusCreated,
	}, linkHandler.CreateUser)

	huma.Register(api, huma.Operation{
		OperationID: "list-user-links",
		Method:      http.MethodGet,
		Path:        "/users/{userId}/links",
		Summary:     "List user links",
		Tags:        []string{"Users"},
	}, linkHandler.ListUserLinks)

	huma.Register(api, huma.Operation{
		OperationID: "redirect",
		Method:      http.MethodGet,
		Path:        "/r/{id}",
		Summary:     "Follow short link",
		Description: "Records the click, then redirects with 302. A click that cannot be stored fails the redirect.",
		Tags:        []string{"Redirect"},
		Errors:      []int{http.StatusNotFound, http.StatusServiceUnavailable},
	}, redirectHandler.Redirect)
}
