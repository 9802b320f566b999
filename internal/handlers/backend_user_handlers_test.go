package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"

	"github.com/askelund/adminpanel/internal/constants"
	"github.com/askelund/adminpanel/internal/handlers"
	"github.com/askelund/adminpanel/internal/middleware"
	"github.com/askelund/adminpanel/internal/models"
	"github.com/askelund/adminpanel/internal/view"
)

func newUserHandler(env *testEnv) *handlers.BackendUserHandler {
	return handlers.NewBackendUserHandler(env.users, env.renderer, env.cfg.AdminPanel.PathPrefix)
}

// asUser attaches an authenticated actor the way the guard does.
func asUser(req *http.Request, actor *models.BackendUser) *http.Request {
	return req.WithContext(middleware.WithUser(req.Context(), actor))
}

func superAdmin(id int64) *models.BackendUser {
	user := models.NewBackendUser("Root", "root@example.com", constants.RoleSuperAdmin)
	user.ID = id
	return user
}

func TestUserIndex(t *testing.T) {
	alice := testUser(t, 1, "Alice", "alice@example.com", constants.RoleAdmin, "password one")
	bob := testUser(t, 2, "Bob", "bob@example.com", constants.RoleUser, "password two")
	env := newTestEnv(alice, bob)
	h := newUserHandler(env)

	req := asUser(httptest.NewRequest(http.MethodGet, "/admin/backend_users", nil), superAdmin(9))
	rec := httptest.NewRecorder()
	h.Index(rec, req)

	page := env.renderer.last(t)
	if page.name != "users_index.html" {
		t.Fatalf("Rendered %q, want users_index.html", page.name)
	}
	users := page.data.(view.PageData).Data.(map[string]any)["Users"].([]*models.BackendUser)
	if len(users) != 2 {
		t.Errorf("Listed %d users, want 2", len(users))
	}
	for _, u := range users {
		if u.PasswordHash != "" || u.Salt != "" {
			t.Errorf("User %s carries credential material into the view", u.Email)
		}
	}
}

func TestUserIndexSearch(t *testing.T) {
	alice := testUser(t, 1, "Alice", "alice@example.com", constants.RoleAdmin, "password one")
	bob := testUser(t, 2, "Bob", "bob@example.com", constants.RoleUser, "password two")
	env := newTestEnv(alice, bob)
	h := newUserHandler(env)

	req := asUser(httptest.NewRequest(http.MethodGet, "/admin/backend_users?search=ali", nil), superAdmin(9))
	rec := httptest.NewRecorder()
	h.Index(rec, req)

	users := env.renderer.last(t).data.(view.PageData).Data.(map[string]any)["Users"].([]*models.BackendUser)
	if len(users) != 1 || users[0].Email != "alice@example.com" {
		t.Errorf("Search returned %+v, want only Alice", users)
	}
}

func TestUserStore(t *testing.T) {
	env := newTestEnv()
	h := newUserHandler(env)

	form := url.Values{
		"name":     {"Carol"},
		"email":    {"carol@example.com"},
		"role":     {constants.RoleUser},
		"password": {"password three"},
	}
	req := asUser(formRequest("/admin/backend_users/store", form), superAdmin(9))
	rec := httptest.NewRecorder()
	h.Store(rec, req)

	if loc := rec.Header().Get("Location"); loc != "/admin/backend_users" {
		t.Errorf("Location = %q, want /admin/backend_users", loc)
	}
	if flash := popFlash(t, rec); flash == nil || flash.Kind != constants.FlashSuccess {
		t.Errorf("Flash = %+v, want a success flash", flash)
	}

	created, err := env.userRepo.GetByEmail(context.Background(), "carol@example.com")
	if err != nil {
		t.Fatalf("The user was not stored: %v", err)
	}
	if created.Role != constants.RoleUser {
		t.Errorf("Role = %q, want %q", created.Role, constants.RoleUser)
	}
}

func TestUserStoreWithWelcomeMail(t *testing.T) {
	env := newTestEnv()
	h := newUserHandler(env)

	form := url.Values{
		"name":              {"Carol"},
		"email":             {"carol@example.com"},
		"send_welcome_mail": {"on"},
	}
	req := asUser(formRequest("/admin/backend_users/store", form), superAdmin(9))
	rec := httptest.NewRecorder()
	h.Store(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("Status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if len(env.mailer.sent) != 1 || env.mailer.sent[0].kind != "welcome" {
		t.Fatalf("Sent mail = %+v, want one welcome mail", env.mailer.sent)
	}
	if env.mailer.sent[0].password == "" {
		t.Error("A generated password must be carried by the welcome mail")
	}

	created, err := env.userRepo.GetByEmail(context.Background(), "carol@example.com")
	if err != nil {
		t.Fatalf("The user was not stored: %v", err)
	}
	if !created.ShouldResetPassword {
		t.Error("A generated password must force a reset at first login")
	}
}

func TestUserStoreValidationError(t *testing.T) {
	env := newTestEnv()
	h := newUserHandler(env)

	form := url.Values{"name": {"Carol"}, "email": {"not-an-email"}}
	req := asUser(formRequest("/admin/backend_users/store", form), superAdmin(9))
	rec := httptest.NewRecorder()
	h.Store(rec, req)

	if loc := rec.Header().Get("Location"); loc != "/admin/backend_users/create" {
		t.Errorf("Location = %q, want a redirect back to the form", loc)
	}
	if flash := popFlash(t, rec); flash == nil || flash.Kind != constants.FlashError {
		t.Errorf("Flash = %+v, want an error flash", flash)
	}
	if len(env.userRepo.users) != 0 {
		t.Error("An invalid form must not create a user")
	}
}

func TestUserStoreForbiddenRole(t *testing.T) {
	admin := testUser(t, 1, "Alice", "alice@example.com", constants.RoleAdmin, "password one")
	env := newTestEnv(admin)
	h := newUserHandler(env)

	form := url.Values{
		"name":     {"Mallory"},
		"email":    {"mallory@example.com"},
		"role":     {constants.RoleSuperAdmin},
		"password": {"password four"},
	}
	req := asUser(formRequest("/admin/backend_users/store", form), admin)
	rec := httptest.NewRecorder()
	h.Store(rec, req)

	if flash := popFlash(t, rec); flash == nil || flash.Kind != constants.FlashError {
		t.Errorf("Flash = %+v, want an error flash", flash)
	}
	if _, err := env.userRepo.GetByEmail(context.Background(), "mallory@example.com"); err == nil {
		t.Error("An admin must not create a super admin")
	}
}

func TestUserEdit(t *testing.T) {
	alice := testUser(t, 1, "Alice", "alice@example.com", constants.RoleAdmin, "password one")
	env := newTestEnv(alice)
	h := newUserHandler(env)

	req := asUser(httptest.NewRequest(http.MethodGet, "/admin/backend_users/edit/1", nil), superAdmin(9))
	req = withURLParam(req, constants.ParamID, "1")
	rec := httptest.NewRecorder()
	h.Edit(rec, req)

	page := env.renderer.last(t)
	if page.name != "user_form.html" {
		t.Fatalf("Rendered %q, want user_form.html", page.name)
	}
	edited := page.data.(view.PageData).Data.(map[string]any)["EditUser"].(*models.BackendUser)
	if edited.Email != "alice@example.com" {
		t.Errorf("EditUser = %+v, want Alice", edited)
	}
	if edited.PasswordHash != "" {
		t.Error("EditUser carries credential material into the view")
	}
}

func TestUserEditBadRequests(t *testing.T) {
	env := newTestEnv()
	h := newUserHandler(env)

	tests := []struct {
		name string
		id   string
		want int
	}{
		{"non-numeric id", "abc", http.StatusBadRequest},
		{"unknown id", "42", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := asUser(httptest.NewRequest(http.MethodGet, "/admin/backend_users/edit/"+tt.id, nil), superAdmin(9))
			req = withURLParam(req, constants.ParamID, tt.id)
			rec := httptest.NewRecorder()
			h.Edit(rec, req)

			if rec.Code != tt.want {
				t.Errorf("Status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestUserUpdate(t *testing.T) {
	alice := testUser(t, 1, "Alice", "alice@example.com", constants.RoleAdmin, "password one")
	env := newTestEnv(alice)
	h := newUserHandler(env)

	form := url.Values{
		"id":    {"1"},
		"name":  {"Alice Cooper"},
		"email": {"alice@example.com"},
		"role":  {constants.RoleAdmin},
	}
	req := asUser(formRequest("/admin/backend_users/update", form), superAdmin(9))
	rec := httptest.NewRecorder()
	h.Update(rec, req)

	if loc := rec.Header().Get("Location"); loc != "/admin/backend_users" {
		t.Errorf("Location = %q, want /admin/backend_users", loc)
	}

	updated, err := env.userRepo.GetByID(context.Background(), 1)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if updated.Name != "Alice Cooper" {
		t.Errorf("Name = %q, want %q", updated.Name, "Alice Cooper")
	}
}

func TestUserUpdateForbidden(t *testing.T) {
	actor := testUser(t, 1, "Alice", "alice@example.com", constants.RoleAdmin, "password one")
	peer := testUser(t, 2, "Bob", "bob@example.com", constants.RoleAdmin, "password two")
	env := newTestEnv(actor, peer)
	h := newUserHandler(env)

	form := url.Values{
		"id":    {"2"},
		"name":  {"Hijacked"},
		"email": {"bob@example.com"},
	}
	req := asUser(formRequest("/admin/backend_users/update", form), actor)
	rec := httptest.NewRecorder()
	h.Update(rec, req)

	if loc := rec.Header().Get("Location"); loc != "/admin/backend_users/edit/2" {
		t.Errorf("Location = %q, want a redirect to the edit form", loc)
	}
	if flash := popFlash(t, rec); flash == nil || flash.Kind != constants.FlashError {
		t.Errorf("Flash = %+v, want an error flash", flash)
	}

	kept, _ := env.userRepo.GetByID(context.Background(), 2)
	if kept.Name != "Bob" {
		t.Errorf("Name = %q, the peer admin must stay untouched", kept.Name)
	}
}

func TestUserUpdateMissingID(t *testing.T) {
	env := newTestEnv()
	h := newUserHandler(env)

	form := url.Values{"name": {"Nobody"}, "email": {"nobody@example.com"}}
	req := asUser(formRequest("/admin/backend_users/update", form), superAdmin(9))
	rec := httptest.NewRecorder()
	h.Update(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestUserDestroy(t *testing.T) {
	alice := testUser(t, 1, "Alice", "alice@example.com", constants.RoleAdmin, "password one")
	env := newTestEnv(alice)
	h := newUserHandler(env)

	req := asUser(formRequest("/admin/backend_users/delete/1", url.Values{}), superAdmin(9))
	req = withURLParam(req, constants.ParamID, "1")
	rec := httptest.NewRecorder()
	h.Destroy(rec, req)

	if loc := rec.Header().Get("Location"); loc != "/admin/backend_users" {
		t.Errorf("Location = %q, want /admin/backend_users", loc)
	}
	if _, err := env.userRepo.GetByID(context.Background(), 1); err == nil {
		t.Error("The user was not deleted")
	}
}

func TestUserDestroySelfBlocked(t *testing.T) {
	actor := testUser(t, 1, "Alice", "alice@example.com", constants.RoleSuperAdmin, "password one")
	env := newTestEnv(actor)
	h := newUserHandler(env)

	req := asUser(formRequest("/admin/backend_users/delete/1", url.Values{}), actor)
	req = withURLParam(req, constants.ParamID, strconv.FormatInt(actor.ID, 10))
	rec := httptest.NewRecorder()
	h.Destroy(rec, req)

	if flash := popFlash(t, rec); flash == nil || flash.Kind != constants.FlashError {
		t.Errorf("Flash = %+v, want an error flash", flash)
	}
	if _, err := env.userRepo.GetByID(context.Background(), 1); err != nil {
		t.Error("Self-deletion must leave the account in place")
	}
}

func TestDashboard(t *testing.T) {
	env := newTestEnv()
	h := handlers.NewDashboardHandler(env.renderer, env.cfg.AdminPanel.PathPrefix)

	actor := superAdmin(1)
	req := asUser(httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil), actor)
	rec := httptest.NewRecorder()
	h.Show(rec, req)

	page := env.renderer.last(t)
	if page.name != "dashboard.html" {
		t.Fatalf("Rendered %q, want dashboard.html", page.name)
	}
	data := page.data.(view.PageData)
	if data.User.(*models.BackendUser).ID != actor.ID {
		t.Error("The dashboard must carry the signed-in user")
	}
	links := data.Data.(map[string]any)
	if links["UsersURL"] != "/admin/backend_users" || links["LogoutURL"] != "/admin/logout" {
		t.Errorf("Links = %+v, want the users and logout URLs", links)
	}
}

func TestUserIndexForbiddenForPlainUser(t *testing.T) {
	actor := testUser(t, 1, "Alice", "alice@example.com", constants.RoleUser, "password one")
	env := newTestEnv(actor)
	h := newUserHandler(env)

	req := asUser(httptest.NewRequest(http.MethodGet, "/admin/backend_users", nil), actor)
	rec := httptest.NewRecorder()
	h.Index(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("Status = %d, want %d", rec.Code, http.StatusForbidden)
	}
	if len(env.renderer.pages) != 0 {
		t.Error("The user list must not render for a plain user")
	}
}

func TestUserCreateFormForbiddenForPlainUser(t *testing.T) {
	actor := testUser(t, 1, "Alice", "alice@example.com", constants.RoleUser, "password one")
	env := newTestEnv(actor)
	h := newUserHandler(env)

	req := asUser(httptest.NewRequest(http.MethodGet, "/admin/backend_users/create", nil), actor)
	rec := httptest.NewRecorder()
	h.Create(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("Status = %d, want %d", rec.Code, http.StatusForbidden)
	}
	if len(env.renderer.pages) != 0 {
		t.Error("The form must not render for a plain user")
	}
}

func TestUserStoreForbiddenForPlainUser(t *testing.T) {
	actor := testUser(t, 1, "Alice", "alice@example.com", constants.RoleUser, "password one")
	env := newTestEnv(actor)
	h := newUserHandler(env)

	form := url.Values{
		"name":     {"Intruder"},
		"email":    {"intruder@example.com"},
		"role":     {constants.RoleUser},
		"password": {"password three"},
	}
	req := asUser(formRequest("/admin/backend_users/store", form), actor)
	rec := httptest.NewRecorder()
	h.Store(rec, req)

	if flash := popFlash(t, rec); flash == nil || flash.Kind != constants.FlashError {
		t.Errorf("Flash = %+v, want an error flash", flash)
	}
	if _, err := env.userRepo.GetByEmail(context.Background(), "intruder@example.com"); err == nil {
		t.Error("A plain user must not be able to create accounts")
	}
}

func TestUserEditForbiddenForPlainUser(t *testing.T) {
	actor := testUser(t, 1, "Alice", "alice@example.com", constants.RoleUser, "password one")
	other := testUser(t, 2, "Bob", "bob@example.com", constants.RoleUser, "password two")
	env := newTestEnv(actor, other)
	h := newUserHandler(env)

	req := asUser(httptest.NewRequest(http.MethodGet, "/admin/backend_users/edit/2", nil), actor)
	req = withURLParam(req, constants.ParamID, "2")
	rec := httptest.NewRecorder()
	h.Edit(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("Status = %d, want %d", rec.Code, http.StatusForbidden)
	}
	if len(env.renderer.pages) != 0 {
		t.Error("Another user's form must not render for a plain user")
	}
}

func TestUserEditSelfAllowedForPlainUser(t *testing.T) {
	actor := testUser(t, 1, "Alice", "alice@example.com", constants.RoleUser, "password one")
	env := newTestEnv(actor)
	h := newUserHandler(env)

	req := asUser(httptest.NewRequest(http.MethodGet, "/admin/backend_users/edit/1", nil), actor)
	req = withURLParam(req, constants.ParamID, "1")
	rec := httptest.NewRecorder()
	h.Edit(rec, req)

	page := env.renderer.last(t)
	if page.name != "user_form.html" {
		t.Fatalf("Rendered %q, want user_form.html", page.name)
	}
	edited := page.data.(view.PageData).Data.(map[string]any)["EditUser"].(*models.BackendUser)
	if edited.ID != actor.ID {
		t.Errorf("EditUser.ID = %d, want %d", edited.ID, actor.ID)
	}
}
