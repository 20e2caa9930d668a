package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/server/auth"
	"github.com/dmitrijs2005/authkeeper/internal/server/services"
	"github.com/dmitrijs2005/authkeeper/internal/server/sessions"
)

const (
	msgRegistered        = "User registered successfully"
	msgLoggedIn          = "Login successful"
	msgLoggedOut         = "Logout successful"
	msgProfile           = "User profile fetched successfully"
	msgSessions          = "Sessions fetched successfully"
	msgSessionsRevoked   = "All sessions revoked successfully"
	msgVerificationSent  = "Verification code sent"
	msgEmailVerified     = "Email verified successfully"
	msgNoActiveSession   = "No active session found"
	msgGoogleUnavailable = "Google login is not configured"
	msgGoogleFailed      = "Google authentication failed"
)

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	user, err := h.auth.Register(r.Context(), services.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Image:    req.Image,
		Phone:    req.Phone,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, msgRegistered, toUserResponse(user))
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	res, err := h.auth.Login(r.Context(), req.Email, req.Password, sessions.DeviceInfoFromRequest(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.setAccessToken(w, res.Token)
	respond(w, r, http.StatusOK, msgLoggedIn, toUserResponse(res.User))
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())
	c, err := r.Cookie(AccessTokenCookie)
	if user == nil || err != nil || c.Value == "" {
		h.writeError(w, r, common.BadRequest(msgNoActiveSession))
		return
	}

	if err := h.auth.Logout(r.Context(), user.ID, c.Value); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.clearAccessToken(w)
	respond(w, r, http.StatusOK, msgLoggedOut, nil)
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())
	respond(w, r, http.StatusOK, msgProfile, toUserResponse(user))
}

func (h *Handler) sessions(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())
	current, _ := SessionFromContext(r.Context())

	list, err := h.auth.Sessions(r.Context(), user.ID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, msgSessions, toSessionResponses(list, current))
}

func (h *Handler) revokeAllSessions(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())

	n, err := h.auth.RevokeAllSessions(r.Context(), user.ID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.clearAccessToken(w)
	respond(w, r, http.StatusOK, msgSessionsRevoked, map[string]int64{"count": n})
}

func (h *Handler) requestEmailVerification(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.auth.RequestEmailVerification(r.Context(), req.Email); err != nil {
		h.writeError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, msgVerificationSent, nil)
}

func (h *Handler) verifyEmail(w http.ResponseWriter, r *http.Request) {
	var req verifyEmailRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.auth.VerifyEmail(r.Context(), req.Email, req.Code); err != nil {
		h.writeError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, msgEmailVerified, nil)
}

// googleLogin sends the browser to the consent screen. An optional redirect
// query parameter travels through the state and is honoured on callback when
// its origin is allowed.
func (h *Handler) googleLogin(w http.ResponseWriter, r *http.Request) {
	if h.google == nil {
		h.writeError(w, r, common.NotFound(msgGoogleUnavailable))
		return
	}
	state := auth.EncodeState(r.URL.Query().Get("redirect"))
	http.Redirect(w, r, h.google.AuthCodeURL(state), http.StatusFound)
}

func (h *Handler) googleCallback(w http.ResponseWriter, r *http.Request) {
	if h.google == nil {
		h.writeError(w, r, common.NotFound(msgGoogleUnavailable))
		return
	}

	q := r.URL.Query()
	code := q.Get("code")
	if code == "" {
		h.writeError(w, r, common.Unauthorized(msgGoogleFailed))
		return
	}

	profile, err := h.google.Exchange(r.Context(), code)
	if err != nil {
		h.log.Warn(r.Context(), "google exchange failed", "error", err)
		h.writeError(w, r, common.Unauthorized(msgGoogleFailed).Wrap(err))
		return
	}

	res, err := h.auth.LoginWithProfile(r.Context(), profile, sessions.DeviceInfoFromRequest(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.setAccessToken(w, res.Token)
	http.Redirect(w, r, auth.ResolveRedirect(q.Get("state"), h.opts.Origins), http.StatusFound)
}
