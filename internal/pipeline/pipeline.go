// Package pipeline runs an ordered list of request stages in front of a
// route handler. Each stage either continues with a (possibly transformed)
// request or short-circuits with an error. Errors from any stage or from
// the handler reach the response boundary exactly once.
package pipeline

import (
	"net/http"

	"github.com/applytrack/applytrack/internal/response"
)

// Stage inspects or transforms a request. A non-nil error stops the pipeline.
type Stage func(r *http.Request) (*http.Request, error)

// Handler serves a request that passed every stage.
type Handler func(w http.ResponseWriter, r *http.Request) error

// Pipeline is an immutable, ordered set of stages bound to a responder.
type Pipeline struct {
	responder *response.Responder
	stages    []Stage
}

// New creates a Pipeline with the given stages.
func New(responder *response.Responder, stages ...Stage) *Pipeline {
	return &Pipeline{
		responder: responder,
		stages:    append([]Stage(nil), stages...),
	}
}

// With returns a new Pipeline with stages appended. The receiver is unchanged.
func (p *Pipeline) With(stages ...Stage) *Pipeline {
	combined := make([]Stage, 0, len(p.stages)+len(stages))
	combined = append(combined, p.stages...)
	combined = append(combined, stages...)
	return &Pipeline{responder: p.responder, stages: combined}
}

// Handle binds h to the pipeline and returns an http.HandlerFunc.
func (p *Pipeline) Handle(h Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := p.run(r)
		if err != nil {
			p.responder.Fail(w, req, err)
			return
		}
		if err := h(w, req); err != nil {
			p.responder.Fail(w, req, err)
		}
	}
}

// run threads the request through every stage in order.
func (p *Pipeline) run(r *http.Request) (*http.Request, error) {
	for _, stage := range p.stages {
		next, err := stage(r)
		if err != nil {
			return r, err
		}
		if next != nil {
			r = next
		}
	}
	return r, nil
}
