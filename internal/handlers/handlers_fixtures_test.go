package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/askelund/adminpanel/internal/auth"
	"github.com/askelund/adminpanel/internal/config"
	"github.com/askelund/adminpanel/internal/models"
	"github.com/askelund/adminpanel/internal/service"
	"github.com/askelund/adminpanel/internal/utils"
)

// fakeUserRepo is an in-memory BackendUserRepository.
type fakeUserRepo struct {
	users  map[int64]*models.BackendUser
	nextID int64
}

func newFakeUserRepo(users ...*models.BackendUser) *fakeUserRepo {
	f := &fakeUserRepo{users: make(map[int64]*models.BackendUser), nextID: 1}
	for _, u := range users {
		f.users[u.ID] = u
		if u.ID >= f.nextID {
			f.nextID = u.ID + 1
		}
	}
	return f
}

func (f *fakeUserRepo) Create(_ context.Context, user *models.BackendUser) error {
	for _, u := range f.users {
		if u.Email == user.Email {
			return utils.NewDuplicateError("backend_user", "email", user.Email)
		}
	}
	user.ID = f.nextID
	f.nextID++
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id int64) (*models.BackendUser, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, utils.NewNotFoundError("backend_user", id)
	}
	return u, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.BackendUser, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, utils.NewNotFoundError("backend_user", email)
}

func (f *fakeUserRepo) First(_ context.Context) (*models.BackendUser, error) {
	var first *models.BackendUser
	for _, u := range f.users {
		if first == nil || u.ID < first.ID {
			first = u
		}
	}
	if first == nil {
		return nil, utils.NewNotFoundError("backend_user", "first")
	}
	return first, nil
}

func (f *fakeUserRepo) Update(_ context.Context, user *models.BackendUser) error {
	if _, ok := f.users[user.ID]; !ok {
		return utils.NewNotFoundError("backend_user", user.ID)
	}
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) Delete(_ context.Context, id int64) error {
	if _, ok := f.users[id]; !ok {
		return utils.NewNotFoundError("backend_user", id)
	}
	delete(f.users, id)
	return nil
}

func (f *fakeUserRepo) ChangePassword(_ context.Context, id int64, passwordHash, salt string) error {
	u, ok := f.users[id]
	if !ok {
		return utils.NewNotFoundError("backend_user", id)
	}
	u.PasswordHash = passwordHash
	u.Salt = salt
	u.ShouldResetPassword = false
	return nil
}

func (f *fakeUserRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	for _, u := range f.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserRepo) List(_ context.Context) ([]*models.BackendUser, error) {
	out := make([]*models.BackendUser, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, u)
	}
	return out, nil
}

// fakeTokenRepo is an in-memory ResetTokenRepository keyed by token string.
type fakeTokenRepo struct {
	tokens map[string]*models.ResetToken
	nextID int64
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{tokens: make(map[string]*models.ResetToken), nextID: 1}
}

func (f *fakeTokenRepo) Replace(_ context.Context, token *models.ResetToken) error {
	for key, t := range f.tokens {
		if t.Email == token.Email {
			delete(f.tokens, key)
		}
	}
	token.ID = f.nextID
	f.nextID++
	f.tokens[token.Token] = token
	return nil
}

func (f *fakeTokenRepo) GetByToken(_ context.Context, token string) (*models.ResetToken, error) {
	t, ok := f.tokens[token]
	if !ok {
		return nil, utils.NewNotFoundError("reset_token", token)
	}
	return t, nil
}

func (f *fakeTokenRepo) MarkUsed(_ context.Context, token string, usedAt time.Time) error {
	t, ok := f.tokens[token]
	if !ok || t.UsedAt != nil {
		return utils.NewNotFoundError("reset_token", token)
	}
	t.MarkUsed(usedAt)
	return nil
}

func (f *fakeTokenRepo) DeleteByEmail(_ context.Context, email string) error {
	for key, t := range f.tokens {
		if t.Email == email {
			delete(f.tokens, key)
		}
	}
	return nil
}

func (f *fakeTokenRepo) DeleteExpired(_ context.Context) (int64, error) {
	var n int64
	now := time.Now()
	for key, t := range f.tokens {
		if t.ExpireAt.Before(now) {
			delete(f.tokens, key)
			n++
		}
	}
	return n, nil
}

// fakeSessionRepo is an in-memory SessionRepository.
type fakeSessionRepo struct {
	sessions map[string]*models.Session
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[string]*models.Session)}
}

func (f *fakeSessionRepo) Create(_ context.Context, session *models.Session) error {
	f.sessions[session.JWTID] = session
	return nil
}

func (f *fakeSessionRepo) GetByJWTID(_ context.Context, jwtID string) (*models.Session, error) {
	s, ok := f.sessions[jwtID]
	if !ok {
		return nil, utils.NewNotFoundError("session", jwtID)
	}
	return s, nil
}

func (f *fakeSessionRepo) DeleteByJWTID(_ context.Context, jwtID string) error {
	if _, ok := f.sessions[jwtID]; !ok {
		return utils.NewNotFoundError("session", jwtID)
	}
	delete(f.sessions, jwtID)
	return nil
}

func (f *fakeSessionRepo) DeleteByUserID(_ context.Context, userID int64) error {
	for jti, s := range f.sessions {
		if s.UserID == userID {
			delete(f.sessions, jti)
		}
	}
	return nil
}

func (f *fakeSessionRepo) DeleteExpired(_ context.Context) (int64, error) {
	var n int64
	for jti, s := range f.sessions {
		if s.IsExpired() {
			delete(f.sessions, jti)
			n++
		}
	}
	return n, nil
}

func (f *fakeSessionRepo) IsValidSession(_ context.Context, jwtID string) (bool, error) {
	s, ok := f.sessions[jwtID]
	return ok && !s.IsExpired(), nil
}

// fakeMailer records sends instead of delivering anything.
type sentMail struct {
	kind     string
	email    string
	password string
	token    string
}

type fakeMailer struct {
	sent []sentMail
}

func (f *fakeMailer) SendWelcomeMail(user *models.BackendUser, password string) error {
	f.sent = append(f.sent, sentMail{kind: "welcome", email: user.Email, password: password})
	return nil
}

func (f *fakeMailer) SendResetPasswordMail(user *models.BackendUser, token string) error {
	f.sent = append(f.sent, sentMail{kind: "reset", email: user.Email, token: token})
	return nil
}

// renderedPage records one Render call on the stub renderer.
type renderedPage struct {
	name string
	data interface{}
}

// stubRenderer records rendered pages instead of executing templates.
type stubRenderer struct {
	pages []renderedPage
}

func (s *stubRenderer) Render(_ http.ResponseWriter, name string, data interface{}) error {
	s.pages = append(s.pages, renderedPage{name: name, data: data})
	return nil
}

func (s *stubRenderer) last(t *testing.T) renderedPage {
	t.Helper()
	if len(s.pages) == 0 {
		t.Fatal("nothing was rendered")
	}
	return s.pages[len(s.pages)-1]
}

// stubSSO is a canned SSOProvider.
type stubSSO struct {
	identity    *auth.SSOIdentity
	callbackErr error
}

func (s *stubSSO) AuthURL(state string) string {
	return "https://idp.example.com/authorize?state=" + url.QueryEscape(state)
}

func (s *stubSSO) Callback(_ context.Context, _ string) (*auth.SSOIdentity, error) {
	if s.callbackErr != nil {
		return nil, s.callbackErr
	}
	return s.identity, nil
}

func testConfig() *config.AppConfig {
	cfg := &config.AppConfig{}
	cfg.App.Environment = "test"
	cfg.Session.Secret = "test-secret-key-for-handler-tests"
	cfg.Session.Expiry = time.Hour
	cfg.Session.Issuer = "adminpanel-test"
	cfg.AdminPanel.PathPrefix = "/admin"
	return cfg
}

func testPasswordCfg() *auth.PasswordConfig {
	cfg := auth.DefaultPasswordConfig()
	cfg.Memory = 8 * 1024
	cfg.Iterations = 1
	return cfg
}

// testUser creates a stored user whose password is the given plaintext.
func testUser(t *testing.T, id int64, name, email, role, password string) *models.BackendUser {
	t.Helper()
	user := models.NewBackendUser(name, email, role)
	user.ID = id
	hash, salt, err := auth.HashPassword(password, testPasswordCfg())
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	user.PasswordHash = hash
	user.Salt = salt
	return user
}

// formRequest builds a POST request with a URL-encoded body.
func formRequest(target string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

// popFlash replays the flash cookie from a response through a fresh request.
func popFlash(t *testing.T, rec *httptest.ResponseRecorder) *utils.Flash {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge >= 0 {
			req.AddCookie(c)
		}
	}
	return utils.PopFlash(httptest.NewRecorder(), req)
}

// testEnv bundles the fakes and services the handlers are built on.
type testEnv struct {
	userRepo    *fakeUserRepo
	tokenRepo   *fakeTokenRepo
	sessionRepo *fakeSessionRepo
	mailer      *fakeMailer
	renderer    *stubRenderer
	cfg         *config.AppConfig
	users       *service.UserService
	tokens      *service.TokenService
	sessions    *auth.SessionManager
}

func newTestEnv(seed ...*models.BackendUser) *testEnv {
	env := &testEnv{
		userRepo:    newFakeUserRepo(seed...),
		tokenRepo:   newFakeTokenRepo(),
		sessionRepo: newFakeSessionRepo(),
		mailer:      &fakeMailer{},
		renderer:    &stubRenderer{},
		cfg:         testConfig(),
	}
	env.users = service.NewUserService(env.userRepo, env.sessionRepo, env.mailer, testPasswordCfg())
	env.tokens = service.NewTokenService(env.tokenRepo, env.userRepo, env.mailer, testPasswordCfg())
	env.sessions = auth.NewSessionManager(env.cfg, env.sessionRepo, env.userRepo)
	return env
}
