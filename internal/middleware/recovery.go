package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/askelund/adminpanel/internal/utils"
)

// Recovery recovers from panics in handlers and returns a 500 instead of
// tearing the connection down.
func Recovery() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					utils.LogPanic(err, debug.Stack())
					utils.Error(
						w,
						http.StatusInternalServerError,
						"internal_error",
						"An unexpected error occurred while processing your request",
						nil,
					)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
