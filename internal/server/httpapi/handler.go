// Package httpapi exposes the authentication and media services over HTTP.
// Every response, including errors, is a JSON envelope carrying the status
// code, a message, the request path and a timestamp.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/dmitrijs2005/authkeeper/internal/server/auth"
	"github.com/dmitrijs2005/authkeeper/internal/server/cookiepolicy"
	"github.com/dmitrijs2005/authkeeper/internal/server/csrf"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/dmitrijs2005/authkeeper/internal/server/services"
	"github.com/dmitrijs2005/authkeeper/internal/server/sessions"
	"github.com/go-chi/chi/v5"
)

// AccessTokenCookie holds the bearer token of the current session.
const AccessTokenCookie = "access-token"

type AuthService interface {
	Register(ctx context.Context, in services.RegisterInput) (*models.User, error)
	Login(ctx context.Context, email, password string, info sessions.DeviceInfo) (*services.LoginResult, error)
	LoginWithProfile(ctx context.Context, p auth.OAuthProfile, info sessions.DeviceInfo) (*services.LoginResult, error)
	Authenticate(ctx context.Context, token string) (*models.User, *models.Session, error)
	Logout(ctx context.Context, userID int64, token string) error
	Sessions(ctx context.Context, userID int64) ([]*models.Session, error)
	RevokeAllSessions(ctx context.Context, userID int64) (int64, error)
	RequestEmailVerification(ctx context.Context, email string) error
	VerifyEmail(ctx context.Context, email, code string) error
}

type MediaService interface {
	Upload(ctx context.Context, user *models.User, files []services.UploadFile) ([]*models.Media, error)
	List(ctx context.Context, userID int64) ([]*models.Media, error)
	Get(ctx context.Context, userID int64, publicID string) (*models.Media, error)
	Update(ctx context.Context, userID int64, publicID string, altText, name *string) (*models.Media, error)
	Delete(ctx context.Context, userID int64, publicID string) (*models.Media, error)
}

// OAuthProvider runs the authorization-code flow of one identity provider.
type OAuthProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (auth.OAuthProfile, error)
}

type Options struct {
	Policy         cookiepolicy.Policy
	SessionTimeout time.Duration
	// Origins are the frontends an OAuth login may redirect back to. The
	// first one is the fallback.
	Origins []string
}

type Handler struct {
	auth   AuthService
	media  MediaService
	google OAuthProvider
	csrf   *csrf.Service
	opts   Options
	log    logging.Logger
}

// NewHandler wires the HTTP layer. google may be nil when Google login is
// not configured.
func NewHandler(authSvc AuthService, mediaSvc MediaService, google OAuthProvider, csrfSvc *csrf.Service,
	opts Options, log logging.Logger) *Handler {
	return &Handler{auth: authSvc, media: mediaSvc, google: google, csrf: csrfSvc, opts: opts, log: log}
}

func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(RequestID, Recover(h.log), AccessLog(h.log))
	r.Use(h.csrf.Middleware(h.writeError))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		h.writeError(w, r, common.NotFound("Cannot "+r.Method+" "+r.URL.Path))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		h.writeError(w, r, &common.APIError{Status: http.StatusMethodNotAllowed, Message: "Method not allowed"})
	})

	r.Get("/csrf", h.csrfToken)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.register)
		r.Post("/login", h.login)
		r.Post("/verify-email/request", h.requestEmailVerification)
		r.Post("/verify-email", h.verifyEmail)
		r.Get("/google", h.googleLogin)
		r.Get("/google/callback", h.googleCallback)

		r.Group(func(r chi.Router) {
			r.Use(h.requireAuth)
			r.Post("/logout", h.logout)
			r.Get("/me", h.me)
			r.Get("/sessions", h.sessions)
			r.Post("/sessions/revoke-all", h.revokeAllSessions)
		})
	})

	r.Route("/media", func(r chi.Router) {
		r.Use(h.requireAuth)
		r.Get("/", h.listMedia)
		r.Post("/upload", h.uploadMedia)
		r.Get("/{id}", h.getMedia)
		r.Put("/{id}", h.updateMedia)
		r.Delete("/{id}", h.deleteMedia)
	})

	return r
}

// requireAuth resolves the access-token cookie to a user and a live session.
func (h *Handler) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var token string
		if c, err := r.Cookie(AccessTokenCookie); err == nil {
			token = c.Value
		}

		user, session, err := h.auth.Authenticate(r.Context(), token)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), user, session)))
	})
}

func (h *Handler) csrfToken(w http.ResponseWriter, r *http.Request) {
	token, err := h.csrf.GenerateToken(w, r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, msgSuccess, token)
}

func (h *Handler) setAccessToken(w http.ResponseWriter, token string) {
	http.SetCookie(w, h.opts.Policy.Apply(&http.Cookie{
		Name:     AccessTokenCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.opts.SessionTimeout / time.Second),
		HttpOnly: true,
	}))
}

func (h *Handler) clearAccessToken(w http.ResponseWriter) {
	http.SetCookie(w, h.opts.Policy.Apply(&http.Cookie{
		Name:     AccessTokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	}))
}
