// Package constants provides shared constant values used throughout the application.
//
// The general_const.go file defines general-purpose constants for request
// parameters, context keys, cookies, flash messages, and backend-user roles.
// These constants ensure consistent naming throughout the admin panel and keep
// string literals out of handlers and middleware.
package constants

// URL Parameters define path parameter names used in route definitions.
const (
	// ParamID is the URL parameter for generic resource identifiers.
	ParamID = "id"

	// ParamToken is the URL parameter for password-reset tokens.
	ParamToken = "token"
)

// Query Parameters define common query string parameter names.
const (
	// QueryParamNext is the query parameter carrying the originally requested
	// path, so the login flow can redirect back after authentication.
	QueryParamNext = "next"

	// QueryParamSearch is the query parameter for filtering the user index.
	QueryParamSearch = "search"
)

// Context Keys define names used for request-scoped context values.
const (
	// BackendUserContextKey is the context key for the authenticated backend user.
	BackendUserContextKey = "backend_user"

	// RequestIDContextKey is the context key for the per-request identifier.
	RequestIDContextKey = "request_id"
)

// Cookies define the cookie names used by the session and flash systems.
const (
	// SessionCookie is the cookie carrying the signed session token.
	SessionCookie = "admin_session"

	// FlashCookie is the cookie carrying a one-shot flash message.
	FlashCookie = "admin_flash"

	// SSOStateCookie is the cookie carrying the OIDC state value between the
	// redirect and the callback.
	SSOStateCookie = "admin_sso_state"
)

// Flash Kinds classify flash messages for presentation.
const (
	// FlashSuccess marks a flash message as a success notification.
	FlashSuccess = "success"

	// FlashError marks a flash message as an error notification.
	FlashError = "error"
)

// Roles define the backend-user role hierarchy, strongest first.
const (
	// RoleSuperAdmin may manage every backend user, including other admins.
	RoleSuperAdmin = "super_admin"

	// RoleAdmin may manage backend users below admin level.
	RoleAdmin = "admin"

	// RoleUser may only manage their own profile.
	RoleUser = "user"
)

// Headers define HTTP header names used by middleware.
const (
	HeaderXRequestID          = "X-Request-ID"
	HeaderXContentTypeOptions = "X-Content-Type-Options"
	HeaderXFrameOptions       = "X-Frame-Options"
	HeaderReferrerPolicy      = "Referrer-Policy"
	HeaderContentType         = "Content-Type"
)

// Security header values.
const (
	ContentTypeOptionsNoSniff  = "nosniff"
	FrameOptionsDeny           = "DENY"
	ReferrerPolicyStrictOrigin = "strict-origin-when-cross-origin"
	ContentTypeJSON            = "application/json"
	ContentTypeHTML            = "text/html; charset=utf-8"
)
