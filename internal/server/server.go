package server

import (
	"net/http"
	"time"

	"github.com/UkralStul/blog-service/internal/auth"
	"github.com/UkralStul/blog-service/internal/config"
	"github.com/UkralStul/blog-service/internal/dataloader"
	"github.com/UkralStul/blog-service/internal/storage"
	"github.com/UkralStul/blog-service/internal/web"

	"github.com/aarol/reload"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server holds the blog's dependencies and serves its pages.
type Server struct {
	store storage.Storage
	auth  *auth.Manager
	pages *web.Renderer
	dev   bool
	now   func() time.Time
}

// New builds a Server on store. Templates are parsed up front unless cfg.IsDev.
func New(store storage.Storage, cfg *config.Config) (*Server, error) {
	pages, err := web.NewRenderer(cfg.IsDev)
	if err != nil {
		return nil, err
	}
	return &Server{
		store: store,
		auth:  auth.NewManager(cfg.SecretKey, store, cfg.CookieSecure),
		pages: pages,
		dev:   cfg.IsDev,
		now:   time.Now,
	}, nil
}

// Handler returns the site's root handler.
func (s *Server) Handler() http.Handler {
	var handler http.Handler = s.routes()
	if s.dev {
		// list of directories to recursively watch
		reloader := reload.New(web.SourceDir+"/templates/", web.SourceDir+"/static/")
		handler = reloader.Handle(handler)
	}
	return handler
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Logger)    // log start and end of each request
	r.Use(middleware.RequestID) // add unique id to each request context
	r.Use(middleware.Recoverer) // recover and log from panic, return 500
	r.Use(middleware.RealIP)    // add request RemoteAddr to X-Real-IP
	r.Use(s.auth.Middleware)
	r.Use(func(next http.Handler) http.Handler {
		return dataloader.Middleware(s.store, next)
	})

	r.NotFound(s.notFound)
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		s.renderError(w, r, http.StatusMethodNotAllowed)
	})

	r.Handle("/static/*", web.Static())

	// public routes
	r.Group(func(r chi.Router) {
		r.Get("/", s.home)
		r.Get("/about", s.about)
		r.Get("/contact", s.contact)
		r.Get("/register", s.register)
		r.Post("/register", s.register)
		r.Get("/login", s.login)
		r.Post("/login", s.login)
		r.Get("/logout", s.logout)
		r.With(s.postCtx).Get("/post/{postID}", s.showPost)
		r.With(s.postCtx).Post("/post/{postID}", s.showPost)
	})

	// admin routes
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAdmin(http.HandlerFunc(s.forbidden)))

		r.Get("/new-post", s.newPost)
		r.Post("/new-post", s.newPost)
		r.With(s.postCtx).Get("/edit-post/{postID}", s.editPost)
		r.With(s.postCtx).Post("/edit-post/{postID}", s.editPost)
		r.With(s.postCtx).Get("/delete/{postID}", s.deletePost)
		r.Get("/remove-comment/{commentID}", s.removeComment)
	})

	return r
}
