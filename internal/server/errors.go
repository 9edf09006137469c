package server

import (
	"errors"
	"log"
	"net/http"
	"runtime/debug"

	"github.com/UkralStul/blog-service/internal/storage"
	"github.com/UkralStul/blog-service/internal/web"
)

// StatusError carries the HTTP status a failure should be answered with.
type StatusError struct {
	Err    error
	Status int
}

func (e StatusError) Error() string {
	return e.Err.Error()
}

func (e StatusError) Unwrap() error {
	return e.Err
}

func (e StatusError) HTTPStatus() int {
	return e.Status
}

func NewStatusError(err error, status int) StatusError {
	return StatusError{
		Err:    err,
		Status: status,
	}
}

// lookupError maps a store lookup failure: missing rows are 404, the rest 500.
func lookupError(err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return NewStatusError(err, http.StatusNotFound)
	}
	return err
}

// fail answers with the status carried by err, or 500.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	var se StatusError
	if errors.As(err, &se) {
		s.renderError(w, r, se.HTTPStatus())
		return
	}
	s.serverError(w, r, err)
}

func (s *Server) serverError(w http.ResponseWriter, r *http.Request, err error) {
	log.Printf("%s %s: %s\n%s", r.Method, r.URL.Path, err.Error(), debug.Stack())
	s.renderError(w, r, http.StatusInternalServerError)
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request) {
	s.renderError(w, r, http.StatusNotFound)
}

func (s *Server) forbidden(w http.ResponseWriter, r *http.Request) {
	s.renderError(w, r, http.StatusForbidden)
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, status int) {
	data := &web.HTMLData{
		Title:   http.StatusText(status),
		Status:  status,
		Message: http.StatusText(status),
	}
	if err := s.renderPage(w, r, status, "error.html", data); err != nil {
		log.Printf("rendering error page: %v", err)
		http.Error(w, http.StatusText(status), status)
	}
}
