package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/askelund/adminpanel/internal/auth"
	"github.com/askelund/adminpanel/internal/constants"
	"github.com/askelund/adminpanel/internal/middleware"
	"github.com/askelund/adminpanel/internal/models"
	"github.com/askelund/adminpanel/internal/service"
	"github.com/askelund/adminpanel/internal/utils"
	"github.com/askelund/adminpanel/internal/view"
)

// BackendUserHandler handles the backend-user management routes.
type BackendUserHandler struct {
	users    *service.UserService
	renderer view.Renderer
	prefix   string
}

// NewBackendUserHandler creates a new BackendUserHandler
func NewBackendUserHandler(users *service.UserService, renderer view.Renderer, prefix string) *BackendUserHandler {
	if users == nil || renderer == nil {
		panic("backend user handler dependencies cannot be nil")
	}
	return &BackendUserHandler{
		users:    users,
		renderer: renderer,
		prefix:   prefix,
	}
}

// Index lists all backend users, optionally filtered by a search term
// matched against name and email.
func (h *BackendUserHandler) Index(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context(), currentUser(r))
	if err != nil {
		appErr := utils.ParseError(err)
		if appErr.StatusCode >= http.StatusInternalServerError {
			log.Error().Err(err).Msg("Failed to list users")
		}
		utils.ErrorFromAppError(w, appErr)
		return
	}

	if search := strings.ToLower(strings.TrimSpace(r.URL.Query().Get(constants.QueryParamSearch))); search != "" {
		filtered := users[:0]
		for _, u := range users {
			if strings.Contains(strings.ToLower(u.Name), search) || strings.Contains(strings.ToLower(u.Email), search) {
				filtered = append(filtered, u)
			}
		}
		users = filtered
	}

	h.render(w, "users_index.html", view.PageData{
		Title: "Backend users",
		User:  currentUser(r),
		Flash: utils.PopFlash(w, r),
		Data: map[string]any{
			"Users":       users,
			"CreateURL":   h.prefix + constants.UserCreatePath,
			"EditBaseURL": h.prefix + constants.UserEditBasePath,
		},
	})
}

// Create renders the empty user form.
func (h *BackendUserHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor := currentUser(r)
	if actor == nil || !auth.Allows(actor.Role, constants.RoleAdmin) {
		utils.ErrorFromAppError(w, utils.NewForbiddenError("You cannot manage backend users"))
		return
	}

	h.render(w, "user_form.html", view.PageData{
		Title: "Create backend user",
		User:  currentUser(r),
		Flash: utils.PopFlash(w, r),
		Data: map[string]any{
			"Action": h.prefix + constants.UserStorePath,
			"Roles":  []string{constants.RoleUser, constants.RoleAdmin, constants.RoleSuperAdmin},
		},
	})
}

// Store creates a user from the submitted form.
func (h *BackendUserHandler) Store(w http.ResponseWriter, r *http.Request) {
	var form models.BackendUserForm
	if err := utils.DecodeAndValidate(r, &form); err != nil {
		utils.RedirectWithFlash(w, r, h.prefix+constants.UserCreatePath, utils.Flash{
			Kind:    constants.FlashError,
			Message: utils.ParseError(err).Message,
		})
		return
	}

	created, err := h.users.Create(r.Context(), currentUser(r), &form)
	if err != nil {
		h.redirectError(w, r, h.prefix+constants.UserCreatePath, err, "Failed to create user")
		return
	}

	utils.RedirectWithFlash(w, r, h.prefix+constants.BackendUsersPath, utils.Flash{
		Kind:    constants.FlashSuccess,
		Message: fmt.Sprintf("User %s created", created.Name),
	})
}

// Edit renders the form pre-filled with an existing user. Users may open
// their own form, anyone else's needs admin.
func (h *BackendUserHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id, err := h.userID(r)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid_id", "Invalid user id", nil)
		return
	}

	actor := currentUser(r)
	if actor == nil || (actor.ID != id && !auth.Allows(actor.Role, constants.RoleAdmin)) {
		utils.ErrorFromAppError(w, utils.NewForbiddenError("You cannot edit this user"))
		return
	}

	user, err := h.users.Get(r.Context(), id)
	if err != nil {
		if utils.IsNotFoundError(err) {
			utils.NotFound(w, "User not found")
			return
		}
		utils.InternalServerError(w, err)
		return
	}

	h.render(w, "user_form.html", view.PageData{
		Title: "Edit backend user",
		User:  currentUser(r),
		Flash: utils.PopFlash(w, r),
		Data: map[string]any{
			"Action":   h.prefix + constants.UserUpdatePath,
			"EditUser": user,
			"Roles":    []string{constants.RoleUser, constants.RoleAdmin, constants.RoleSuperAdmin},
		},
	})
}

// Update applies the submitted form to the user named by its id field.
func (h *BackendUserHandler) Update(w http.ResponseWriter, r *http.Request) {
	var form models.BackendUserForm
	if err := utils.DecodeAndValidate(r, &form); err != nil {
		utils.RedirectWithFlash(w, r, h.prefix+constants.BackendUsersPath, utils.Flash{
			Kind:    constants.FlashError,
			Message: utils.ParseError(err).Message,
		})
		return
	}

	id, err := strconv.ParseInt(r.Form.Get(constants.ParamID), 10, 64)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid_id", "Invalid user id", nil)
		return
	}

	editURL := fmt.Sprintf("%s%s%d", h.prefix, constants.UserEditBasePath, id)

	updated, err := h.users.Update(r.Context(), currentUser(r), id, &form)
	if err != nil {
		h.redirectError(w, r, editURL, err, "Failed to update user")
		return
	}

	utils.RedirectWithFlash(w, r, h.prefix+constants.BackendUsersPath, utils.Flash{
		Kind:    constants.FlashSuccess,
		Message: fmt.Sprintf("User %s updated", updated.Name),
	})
}

// Destroy deletes the user named in the path.
func (h *BackendUserHandler) Destroy(w http.ResponseWriter, r *http.Request) {
	id, err := h.userID(r)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid_id", "Invalid user id", nil)
		return
	}

	if err := h.users.Delete(r.Context(), currentUser(r), id); err != nil {
		h.redirectError(w, r, h.prefix+constants.BackendUsersPath, err, "Failed to delete user")
		return
	}

	utils.RedirectWithFlash(w, r, h.prefix+constants.BackendUsersPath, utils.Flash{
		Kind:    constants.FlashSuccess,
		Message: "User deleted",
	})
}

func (h *BackendUserHandler) userID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, constants.ParamID), 10, 64)
}

// redirectError turns a service error into a flash on the given page.
// Server faults are logged before the generic message goes out.
func (h *BackendUserHandler) redirectError(w http.ResponseWriter, r *http.Request, target string, err error, logMsg string) {
	appErr := utils.ParseError(err)
	if appErr.StatusCode >= http.StatusInternalServerError {
		log.Error().Err(err).Msg(logMsg)
	}
	utils.RedirectWithFlash(w, r, target, utils.Flash{
		Kind:    constants.FlashError,
		Message: appErr.Message,
	})
}

func (h *BackendUserHandler) render(w http.ResponseWriter, name string, data view.PageData) {
	if err := h.renderer.Render(w, name, data); err != nil {
		log.Error().Err(err).Str("template", name).Msg("Render failed")
		utils.InternalServerError(w, err)
	}
}

// currentUser returns the guard-attached user for the request.
func currentUser(r *http.Request) *models.BackendUser {
	user, _ := middleware.UserFromContext(r.Context())
	return user
}
