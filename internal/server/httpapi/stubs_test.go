package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/server/auth"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/dmitrijs2005/authkeeper/internal/server/services"
	"github.com/dmitrijs2005/authkeeper/internal/server/sessions"
	"github.com/stretchr/testify/require"
)

// stubAuth authenticates exactly one token, "good-token", as user.
type stubAuth struct {
	user    *models.User
	session *models.Session
	authErr error

	registered  []services.RegisterInput
	loginErr    error
	loginDevice sessions.DeviceInfo
	loggedOut   []string
	verified    []string
	profiles    []auth.OAuthProfile
}

func newStubAuth() *stubAuth {
	return &stubAuth{
		user:    &models.User{ID: 1, PublicID: "user-pub", Email: "jane@example.com", Name: "Jane", EmailVerified: true},
		session: &models.Session{ID: 10, PublicID: "sess-pub"},
	}
}

func (s *stubAuth) Register(_ context.Context, in services.RegisterInput) (*models.User, error) {
	s.registered = append(s.registered, in)
	return &models.User{ID: 2, PublicID: "new-pub", Email: in.Email, Name: in.Name, Password: "hash"}, nil
}

func (s *stubAuth) Login(_ context.Context, email, password string, info sessions.DeviceInfo) (*services.LoginResult, error) {
	if s.loginErr != nil {
		return nil, s.loginErr
	}
	s.loginDevice = info
	return &services.LoginResult{User: s.user, Token: "good-token"}, nil
}

func (s *stubAuth) LoginWithProfile(_ context.Context, p auth.OAuthProfile, _ sessions.DeviceInfo) (*services.LoginResult, error) {
	s.profiles = append(s.profiles, p)
	return &services.LoginResult{User: s.user, Token: "google-token"}, nil
}

func (s *stubAuth) Authenticate(_ context.Context, token string) (*models.User, *models.Session, error) {
	if s.authErr != nil {
		return nil, nil, s.authErr
	}
	if token != "good-token" {
		return nil, nil, common.Unauthorized("Unauthorized")
	}
	return s.user, s.session, nil
}

func (s *stubAuth) Logout(_ context.Context, _ int64, token string) error {
	s.loggedOut = append(s.loggedOut, token)
	return nil
}

func (s *stubAuth) Sessions(context.Context, int64) ([]*models.Session, error) {
	return []*models.Session{{ID: 11, PublicID: "other"}, s.session}, nil
}

func (s *stubAuth) RevokeAllSessions(context.Context, int64) (int64, error) { return 2, nil }

func (s *stubAuth) RequestEmailVerification(context.Context, string) error { return nil }

func (s *stubAuth) VerifyEmail(_ context.Context, email, code string) error {
	s.verified = append(s.verified, email+":"+code)
	return nil
}

type stubMedia struct {
	uploaded []services.UploadFile
	items    map[string]*models.Media
}

func newStubMedia() *stubMedia {
	return &stubMedia{items: map[string]*models.Media{
		"m1": {PublicID: "m1", Filename: "a.png", SecureURL: "https://s/a", MediaType: "image"},
	}}
}

func (s *stubMedia) Upload(_ context.Context, _ *models.User, files []services.UploadFile) ([]*models.Media, error) {
	s.uploaded = append(s.uploaded, files...)
	out := make([]*models.Media, 0, len(files))
	for _, f := range files {
		out = append(out, &models.Media{PublicID: "new-" + f.Filename, Filename: f.Filename, FileSize: int64(len(f.Data))})
	}
	return out, nil
}

func (s *stubMedia) List(context.Context, int64) ([]*models.Media, error) {
	return []*models.Media{s.items["m1"]}, nil
}

func (s *stubMedia) Get(_ context.Context, _ int64, id string) (*models.Media, error) {
	m, ok := s.items[id]
	if !ok {
		return nil, common.NotFound(services.MsgMediaNotFound)
	}
	return m, nil
}

func (s *stubMedia) Update(_ context.Context, _ int64, id string, altText, name *string) (*models.Media, error) {
	m, ok := s.items[id]
	if !ok {
		return nil, common.UnprocessableEntity("Media could not be updated")
	}
	if altText != nil {
		m.AltText = *altText
	}
	if name != nil {
		m.Filename = *name
	}
	return m, nil
}

func (s *stubMedia) Delete(_ context.Context, _ int64, id string) (*models.Media, error) {
	m, ok := s.items[id]
	if !ok {
		return nil, common.UnprocessableEntity("Media could not be deleted")
	}
	delete(s.items, id)
	return m, nil
}

type stubProvider struct {
	err error
}

func (p *stubProvider) AuthCodeURL(state string) string {
	return "https://accounts.test/auth?state=" + state
}

func (p *stubProvider) Exchange(_ context.Context, code string) (auth.OAuthProfile, error) {
	if p.err != nil {
		return nil, p.err
	}
	return stubProfile{email: "jane@example.com"}, nil
}

type stubProfile struct{ email string }

func (p stubProfile) Provider() string         { return auth.ProviderGoogle }
func (p stubProfile) ExternalID() string       { return "g-1" }
func (p stubProfile) Email() string            { return p.email }
func (p stubProfile) Name() string             { return "Jane" }
func (p stubProfile) Picture() string          { return "" }
func (p stubProfile) Tokens() auth.OAuthTokens { return auth.OAuthTokens{} }

type testEnvelope struct {
	StatusCode int             `json:"statusCode"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
	Code       string          `json:"code"`
	Timestamp  string          `json:"timestamp"`
	Path       string          `json:"path"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) testEnvelope {
	t.Helper()
	var env testEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func jsonBody(v string) *strings.Reader { return strings.NewReader(v) }
