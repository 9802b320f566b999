package utils

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/askelund/adminpanel/internal/constants"
)

// Flash is a one-shot notification carried across a redirect in a cookie.
// It is written on the response of one request and consumed by the next.
type Flash struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// SetFlash stores a flash message in the flash cookie.
func SetFlash(w http.ResponseWriter, flash Flash) {
	payload, err := json.Marshal(flash)
	if err != nil {
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     constants.FlashCookie,
		Value:    base64.URLEncoding.EncodeToString(payload),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// PopFlash reads and clears the flash cookie. It returns nil when no flash
// message is set or the cookie cannot be decoded.
func PopFlash(w http.ResponseWriter, r *http.Request) *Flash {
	cookie, err := r.Cookie(constants.FlashCookie)
	if err != nil {
		return nil
	}

	// Expire the cookie so the message shows only once
	http.SetCookie(w, &http.Cookie{
		Name:     constants.FlashCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	payload, err := base64.URLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return nil
	}

	var flash Flash
	if err := json.Unmarshal(payload, &flash); err != nil {
		return nil
	}

	return &flash
}

// Redirect sends a 303 See Other redirect to the given location.
func Redirect(w http.ResponseWriter, r *http.Request, location string) {
	http.Redirect(w, r, location, http.StatusSeeOther)
}

// RedirectWithFlash sets a flash message and redirects to the given location.
func RedirectWithFlash(w http.ResponseWriter, r *http.Request, location string, flash Flash) {
	SetFlash(w, flash)
	Redirect(w, r, location)
}
