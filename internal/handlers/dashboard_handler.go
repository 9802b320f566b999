package handlers

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/askelund/adminpanel/internal/constants"
	"github.com/askelund/adminpanel/internal/utils"
	"github.com/askelund/adminpanel/internal/view"
)

// DashboardHandler renders the admin landing page.
type DashboardHandler struct {
	renderer view.Renderer
	prefix   string
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(renderer view.Renderer, prefix string) *DashboardHandler {
	if renderer == nil {
		panic("dashboard handler dependencies cannot be nil")
	}
	return &DashboardHandler{renderer: renderer, prefix: prefix}
}

// Show renders the dashboard.
func (h *DashboardHandler) Show(w http.ResponseWriter, r *http.Request) {
	data := view.PageData{
		Title: "Dashboard",
		User:  currentUser(r),
		Flash: utils.PopFlash(w, r),
		Data: map[string]any{
			"UsersURL":  h.prefix + constants.BackendUsersPath,
			"LogoutURL": h.prefix + constants.LogoutPath,
		},
	}
	if err := h.renderer.Render(w, "dashboard.html", data); err != nil {
		log.Error().Err(err).Msg("Render failed")
		utils.InternalServerError(w, err)
	}
}
