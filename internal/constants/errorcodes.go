// Package constants provides shared constant values used throughout the application.
//
// The errorcodes.go file defines constants related to error handling and
// user-facing messaging. User-facing messages are carefully crafted to be
// informative without revealing sensitive implementation details. In
// particular, the reset-request flow presents the same message whether or not
// an account exists for the submitted address.
package constants

// Error Codes define machine-readable codes included in JSON error responses.
const (
	// CodeNotFound indicates that a requested resource could not be found.
	CodeNotFound = "not_found"

	// CodeBadRequest indicates that the request was malformed or invalid.
	CodeBadRequest = "bad_request"

	// CodeUnauthorized indicates that authentication is required but was not provided.
	CodeUnauthorized = "unauthorized"

	// CodeForbidden indicates that the requester lacks sufficient permissions.
	CodeForbidden = "forbidden"

	// CodeValidationError indicates that input validation failed.
	CodeValidationError = "validation_error"

	// CodeDuplicateResource indicates an attempt to create a resource that already exists.
	CodeDuplicateResource = "duplicate_resource"

	// CodeInvalidCredentials indicates that authentication credentials are incorrect.
	CodeInvalidCredentials = "invalid_credentials"

	// CodeTokenExpired indicates that a token has been used or has expired.
	CodeTokenExpired = "token_expired"

	// CodeTokenInvalid indicates that a token is malformed or unknown.
	CodeTokenInvalid = "token_invalid"

	// CodeSessionExpired indicates that the login session could not be resolved.
	CodeSessionExpired = "session_expired"

	// CodeConfiguration indicates a deployment misconfiguration.
	CodeConfiguration = "configuration_error"

	// CodeInternalError indicates an unexpected internal error.
	CodeInternalError = "internal_error"
)

// User-Facing Messages define standardized flash messages shown after redirects.
const (
	// MsgSessionExpired is flashed when a protected request has no resolvable session.
	MsgSessionExpired = "Session expired login again"

	// MsgChangePassword is flashed when a forced password reset redirects the user.
	MsgChangePassword = "Please change your password"

	// MsgResetMailSent is the enumeration-safe response to a reset request. It
	// is shown whether or not the address belongs to an account.
	MsgResetMailSent = "E-mail with instructions sent if user exists"

	// MsgPasswordReset is flashed after a successful password reset.
	MsgPasswordReset = "Password is reset"

	// MsgLoginFailed is flashed when credentials are rejected.
	MsgLoginFailed = "Invalid email or password"

	// MsgLoginError is flashed when a login attempt fails for reasons other
	// than the credentials.
	MsgLoginError = "Login failed, try again"

	// MsgLoggedIn is flashed after a successful login.
	MsgLoggedIn = "You are now logged in"

	// MsgLoggedOut is flashed after logout.
	MsgLoggedOut = "You are now logged out"

	// MsgSSOStateMismatch is flashed when the SSO callback state does not
	// match the cookie set at redirect time.
	MsgSSOStateMismatch = "Sign-in could not be verified, try again"

	// MsgSSOFailed is flashed when the identity provider rejects the exchange.
	MsgSSOFailed = "Sign-in failed, try again"

	// MsgSSOUnknownIdentity is flashed when the external identity maps to no
	// backend user.
	MsgSSOUnknownIdentity = "No account matches this identity"

	// MsgInternalServerError is the generic body for unexpected failures.
	MsgInternalServerError = "An internal server error occurred"
)
