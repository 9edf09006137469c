package auth

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/UkralStul/blog-service/internal/domain"
	"github.com/UkralStul/blog-service/internal/storage"
	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/jwtauth/v5"
)

const (
	// TokenCookie is the cookie jwtauth.TokenFromCookie looks for.
	TokenCookie = "jwt"
	TokenTTL    = 24 * time.Hour

	flashKey  = "flash"
	userIDKey = "userID"
)

type contextKey int

const userKey contextKey = iota

// Manager issues and verifies the signed identity cookie and owns the server
// session used for flash notices.
type Manager struct {
	Sessions *scs.SessionManager
	tokens   *jwtauth.JWTAuth
	store    storage.Storage
	secure   bool
}

// NewManager signs identity tokens with secret (HS256). secure marks cookies
// HTTPS-only.
func NewManager(secret []byte, store storage.Storage, secure bool) *Manager {
	sessions := scs.New()
	sessions.Lifetime = TokenTTL
	sessions.Cookie.Name = "session"
	sessions.Cookie.HttpOnly = true
	sessions.Cookie.SameSite = http.SameSiteLaxMode
	sessions.Cookie.Secure = secure

	return &Manager{
		Sessions: sessions,
		tokens:   jwtauth.New("HS256", secret, nil),
		store:    store,
		secure:   secure,
	}
}

// Middleware loads the session, verifies the identity cookie and puts the
// current user, if any, into the request context. The token only counts while
// the server session it was issued with is alive.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return m.Sessions.LoadAndSave(jwtauth.Verifier(m.tokens)(m.loadUser(next)))
}

func (m *Manager) loadUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, claims, err := jwtauth.FromContext(r.Context())
		if err != nil || claims == nil {
			// missing, expired or forged token: anonymous
			next.ServeHTTP(w, r)
			return
		}
		sub, _ := claims["sub"].(string)
		id, err := strconv.Atoi(sub)
		if err != nil || m.Sessions.GetInt(r.Context(), userIDKey) != id {
			// session ended by logout or never paired with this token
			next.ServeHTTP(w, r)
			return
		}
		user, err := m.store.GetUserByID(r.Context(), id)
		if err != nil {
			if !errors.Is(err, storage.ErrNotFound) {
				log.Printf("auth: loading user %d: %v", id, err)
			}
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	})
}

// Login starts an authenticated session for user.
func (m *Manager) Login(w http.ResponseWriter, r *http.Request, user *domain.User) error {
	if err := m.Sessions.RenewToken(r.Context()); err != nil {
		return err
	}
	m.Sessions.Put(r.Context(), userIDKey, user.ID)

	claims := map[string]interface{}{"sub": strconv.Itoa(user.ID)}
	jwtauth.SetIssuedNow(claims)
	jwtauth.SetExpiryIn(claims, TokenTTL)
	_, token, err := m.tokens.Encode(claims)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     TokenCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(TokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Logout ends the session on both sides: the cookie is cleared and the server
// session destroyed, so a copied token stops working. It never fails from the
// caller's point of view.
func (m *Manager) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     TokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
	})
	if err := m.Sessions.Destroy(r.Context()); err != nil {
		log.Printf("auth: destroying session: %v", err)
	}
}

// Flash stores a one-shot notice shown on the next rendered page.
func (m *Manager) Flash(ctx context.Context, msg string) {
	m.Sessions.Put(ctx, flashKey, msg)
}

// PopFlash returns and clears the pending notice.
func (m *Manager) PopFlash(ctx context.Context) string {
	return m.Sessions.PopString(ctx, flashKey)
}

// WithUser returns a copy of ctx carrying user.
func WithUser(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// CurrentUser returns the authenticated user or nil.
func CurrentUser(ctx context.Context) *domain.User {
	user, _ := ctx.Value(userKey).(*domain.User)
	return user
}

// RequireAdmin lets only the administrator through; everyone else, anonymous
// visitors included, gets forbidden.
func RequireAdmin(forbidden http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !CurrentUser(r.Context()).IsAdmin() {
				forbidden.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
