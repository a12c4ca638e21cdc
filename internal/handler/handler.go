// Package handler provides the HTTP handlers and routes of the applytrack API.
package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/applytrack/applytrack/internal/apperr"
	"github.com/applytrack/applytrack/internal/response"
)

// routeMethods are the methods tried when building an Allow header.
var routeMethods = []string{
	http.MethodGet,
	http.MethodHead,
	http.MethodPost,
	http.MethodPut,
	http.MethodPatch,
	http.MethodDelete,
	http.MethodOptions,
}

// Handler serves the fallback routes.
type Handler struct {
	responder *response.Responder
	routes    chi.Routes
}

// New creates a new Handler instance. routes is the root router, used to
// list the methods a path accepts; it may be nil.
func New(responder *response.Responder, routes chi.Routes) *Handler {
	return &Handler{responder: responder, routes: routes}
}

// NotFound answers unknown routes with a 404 envelope.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.responder.Fail(w, r, apperr.NotFound("Route "+r.Method+" "+r.URL.Path+" not found"))
}

// MethodNotAllowed answers known paths hit with the wrong method.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	if allowed := h.allowedMethods(r.URL.Path); len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	h.responder.Fail(w, r, apperr.MethodNotAllowed(""))
}

func (h *Handler) allowedMethods(path string) []string {
	if h.routes == nil {
		return nil
	}
	var allowed []string
	for _, method := range routeMethods {
		if h.routes.Match(chi.NewRouteContext(), method, path) {
			allowed = append(allowed, method)
		}
	}
	return allowed
}
