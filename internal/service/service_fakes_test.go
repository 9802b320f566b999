package service_test

import (
	"context"
	"time"

	"github.com/askelund/adminpanel/internal/models"
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

// sentMail records one delivered message.
type sentMail struct {
	kind     string
	email    string
	password string
	token    string
}

// fakeMailer records sends instead of delivering anything.
type fakeMailer struct {
	sent    []sentMail
	sendErr error
}

func (f *fakeMailer) SendWelcomeMail(user *models.BackendUser, password string) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, sentMail{kind: "welcome", email: user.Email, password: password})
	return nil
}

func (f *fakeMailer) SendResetPasswordMail(user *models.BackendUser, token string) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, sentMail{kind: "reset", email: user.Email, token: token})
	return nil
}
