package constants

// Base Routes
const (
	AdminBasePath = "/admin"
	HealthPath    = "/health"
)

// Login and password-reset routes, relative to the admin prefix.
const (
	LoginPath          = "/login"
	LogoutPath         = "/logout"
	SSOPath            = "/login/sso"
	SSOCallbackPath    = "/login/sso/callback"
	ResetRequestPath   = "/login/reset"
	ResetTokenPath     = "/login/reset/{token}"
	DashboardPath      = "/dashboard"
	BackendUsersPath   = "/backend_users"
	UserCreatePath     = "/backend_users/create"
	UserStorePath      = "/backend_users/store"
	UserEditPath       = "/backend_users/edit/{id}"
	UserEditBasePath   = "/backend_users/edit/"
	UserUpdatePath     = "/backend_users/update"
	UserDeletePath     = "/backend_users/delete/{id}"
)
