package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/askelund/adminpanel/internal/auth"
	"github.com/askelund/adminpanel/internal/constants"
	"github.com/askelund/adminpanel/internal/models"
	"github.com/askelund/adminpanel/internal/repository"
	"github.com/askelund/adminpanel/internal/utils"
)

// UserService orchestrates backend-user management. Role rules: listing,
// creating, and deleting users is admin-only, an actor never grants a role
// above their own, admins only manage plain users, and everyone may edit
// their own profile.
type UserService struct {
	users       repository.BackendUserRepository
	sessions    repository.SessionRepository
	mailer      Mailer
	passwordCfg *auth.PasswordConfig
}

// NewUserService creates a new UserService
func NewUserService(
	users repository.BackendUserRepository,
	sessions repository.SessionRepository,
	mailer Mailer,
	passwordCfg *auth.PasswordConfig,
) *UserService {
	return &UserService{
		users:       users,
		sessions:    sessions,
		mailer:      mailer,
		passwordCfg: passwordCfg,
	}
}

// List returns all backend users ordered by name, with credential material
// stripped. Only admins may list the panel's users.
func (s *UserService) List(ctx context.Context, actor *models.BackendUser) ([]*models.BackendUser, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	sanitized := make([]*models.BackendUser, len(users))
	for i, u := range users {
		sanitized[i] = u.Sanitize()
	}
	return sanitized, nil
}

// Get returns a single backend user by ID, sanitized.
func (s *UserService) Get(ctx context.Context, id int64) (*models.BackendUser, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return user.Sanitize(), nil
}

// FindByEmail returns the backend user behind an email, sanitized. The SSO
// callback uses this to bind an external identity to an existing account.
func (s *UserService) FindByEmail(ctx context.Context, email string) (*models.BackendUser, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return user.Sanitize(), nil
}

// Create adds a new backend user from the submitted form. An empty password
// means a random one is generated and the welcome mail, when requested,
// carries it.
func (s *UserService) Create(ctx context.Context, actor *models.BackendUser, form *models.BackendUserForm) (*models.BackendUser, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if !auth.CanAssignRole(actor, roleOrDefault(form.Role)) {
		return nil, utils.NewForbiddenError("You cannot assign this role")
	}

	exists, err := s.users.ExistsByEmail(ctx, form.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, utils.NewDuplicateError("BackendUser", "email", form.Email)
	}

	password := form.Password
	generated := false
	if password == "" {
		password, err = auth.RandomPassword()
		if err != nil {
			return nil, fmt.Errorf("failed to generate password: %w", err)
		}
		generated = true
	} else if err := utils.ValidatePassword(password); err != nil {
		return nil, err
	}

	passwordHash, salt, err := auth.HashPassword(password, s.passwordCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.NewBackendUser(form.Name, form.Email, form.Role)
	user.PasswordHash = passwordHash
	user.Salt = salt
	// A generated password must be changed at first login.
	user.ShouldResetPassword = form.ShouldResetPassword || generated

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	if form.SendWelcomeMail {
		mailPassword := ""
		if generated {
			mailPassword = password
		}
		if err := s.mailer.SendWelcomeMail(user, mailPassword); err != nil {
			log.Error().Err(err).Msg("Failed to deliver welcome mail")
		}
	}

	log.Info().Int64("user_id", user.ID).Str("role", user.Role).Msg("Backend user created")
	return user.Sanitize(), nil
}

// Update modifies an existing backend user from the submitted form. The
// password only changes when the form carries one; a password change revokes
// the user's other sessions.
func (s *UserService) Update(ctx context.Context, actor *models.BackendUser, id int64, form *models.BackendUserForm) (*models.BackendUser, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !auth.CanManage(actor, user) {
		return nil, utils.NewForbiddenError("You cannot edit this user")
	}

	if form.Role != "" && form.Role != user.Role {
		if actor.ID == user.ID && !auth.Allows(actor.Role, form.Role) {
			return nil, utils.NewForbiddenError("You cannot raise your own role")
		}
		if !auth.CanAssignRole(actor, form.Role) {
			return nil, utils.NewForbiddenError("You cannot assign this role")
		}
		user.Role = form.Role
	}

	user.Name = form.Name
	user.Email = form.Email
	user.UpdatedAt = time.Now()

	// A user flagged for a forced reset is routed to this form; the flag
	// only clears for them once a new password actually arrives. Admins
	// editing someone else keep the explicit checkbox.
	if actor == nil || actor.ID != user.ID {
		user.ShouldResetPassword = form.ShouldResetPassword
	}

	if form.Password != "" {
		if err := utils.ValidatePassword(form.Password); err != nil {
			return nil, err
		}

		passwordHash, salt, err := auth.HashPassword(form.Password, s.passwordCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = passwordHash
		user.Salt = salt
		user.ShouldResetPassword = false

		if err := s.sessions.DeleteByUserID(ctx, user.ID); err != nil {
			return nil, fmt.Errorf("failed to revoke sessions: %w", err)
		}
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	log.Info().Int64("user_id", user.ID).Msg("Backend user updated")
	return user.Sanitize(), nil
}

// Delete removes a backend user and their sessions. Actors cannot delete
// themselves.
func (s *UserService) Delete(ctx context.Context, actor *models.BackendUser, id int64) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if actor != nil && actor.ID == id {
		return utils.NewForbiddenError("You cannot delete your own account")
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if !auth.CanManage(actor, user) {
		return utils.NewForbiddenError("You cannot delete this user")
	}

	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}

	log.Info().Int64("user_id", id).Msg("Backend user deleted")
	return nil
}

// VerifyCredentials checks a login form against the stored hash. Lookup
// misses and bad passwords both come back as invalid credentials so login
// responses stay uniform.
func (s *UserService) VerifyCredentials(ctx context.Context, creds *models.LoginCredentials) (*models.BackendUser, error) {
	user, err := s.users.GetByEmail(ctx, creds.Email)
	if err != nil {
		if utils.IsNotFoundError(err) {
			utils.LogAuth("login_failed", 0, creds.Email, false, "user not found")
			return nil, utils.NewInvalidCredentialsError()
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	match, err := auth.VerifyPassword(creds.Password, user.PasswordHash, user.Salt, s.passwordCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !match {
		utils.LogAuth("login_failed", user.ID, user.Email, false, "invalid password")
		return nil, utils.NewInvalidCredentialsError()
	}

	return user, nil
}

// requireAdmin rejects actors below admin level. User management is an
// admin surface; plain users only ever touch their own record through the
// edit form.
func requireAdmin(actor *models.BackendUser) error {
	if actor == nil || !auth.Allows(actor.Role, constants.RoleAdmin) {
		return utils.NewForbiddenError("You cannot manage backend users")
	}
	return nil
}

func roleOrDefault(role string) string {
	if role == "" {
		return constants.DefaultRole
	}
	return role
}
