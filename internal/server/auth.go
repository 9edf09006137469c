package server

import (
	"errors"
	"log"
	"net/http"

	"github.com/UkralStul/blog-service/internal/auth"
	"github.com/UkralStul/blog-service/internal/domain"
	"github.com/UkralStul/blog-service/internal/forms"
	"github.com/UkralStul/blog-service/internal/storage"
	"github.com/UkralStul/blog-service/internal/web"
)

const (
	flashAlreadyRegistered = "You're already subscribed! Try logging in instead!"
	flashUnknownEmail      = "No record of this email address. Are you a subscriber?"
	flashWrongPassword     = "Incorrect Password! Try Again!"
	flashLoginToComment    = "Must be a subscriber to chime in!"
)

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var form forms.Register
	if r.Method != http.MethodPost {
		s.render(w, r, "register.html", &web.HTMLData{Title: "Register", Form: form})
		return
	}

	errs, err := forms.Decode(r, &form)
	if err != nil {
		s.renderError(w, r, http.StatusBadRequest)
		return
	}
	if errs != nil {
		form.Password = ""
		s.render(w, r, "register.html", &web.HTMLData{Title: "Register", Form: form, Errors: errs})
		return
	}

	ctx := r.Context()
	if _, err := s.store.GetUserByEmail(ctx, form.Email); err == nil {
		s.auth.Flash(ctx, flashAlreadyRegistered)
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	} else if !errors.Is(err, storage.ErrNotFound) {
		s.serverError(w, r, err)
		return
	}

	hash, err := auth.HashPassword(form.Password)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	user, err := s.store.CreateUser(ctx, &domain.User{Name: form.Name, Email: form.Email, Password: hash})
	if errors.Is(err, storage.ErrDuplicateEmail) {
		s.auth.Flash(ctx, flashAlreadyRegistered)
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	log.Printf("Registered user %d", user.ID)

	if err := s.auth.Login(w, r, user); err != nil {
		s.serverError(w, r, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var form forms.Login
	if r.Method != http.MethodPost {
		s.render(w, r, "login.html", &web.HTMLData{Title: "Log In", Form: form})
		return
	}

	errs, err := forms.Decode(r, &form)
	if err != nil {
		s.renderError(w, r, http.StatusBadRequest)
		return
	}
	if errs != nil {
		form.Password = ""
		s.render(w, r, "login.html", &web.HTMLData{Title: "Log In", Form: form, Errors: errs})
		return
	}

	ctx := r.Context()
	user, err := s.store.GetUserByEmail(ctx, form.Email)
	if errors.Is(err, storage.ErrNotFound) {
		s.auth.Flash(ctx, flashUnknownEmail)
		http.Redirect(w, r, "/register", http.StatusSeeOther)
		return
	}
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	ok, err := auth.PasswordMatches(user.Password, form.Password)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	if !ok {
		s.auth.Flash(ctx, flashWrongPassword)
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	if err := s.auth.Login(w, r, user); err != nil {
		s.serverError(w, r, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	s.auth.Logout(w, r)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
