package middleware

import "net/http"

const AuthRedirectHeader = "X-Auth-Redirect"

type redirectWriter struct {
	http.ResponseWriter
	loginPath string
}

func (rw *redirectWriter) WriteHeader(code int) {
	if code == http.StatusUnauthorized {
		rw.Header().Set(AuthRedirectHeader, rw.loginPath)
	}

	rw.ResponseWriter.WriteHeader(code)
}

func (rw *redirectWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// AuthRedirect tells the UI where to send the user whenever a response says
// the session is no longer valid.
func AuthRedirect(loginPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(&redirectWriter{ResponseWriter: w, loginPath: loginPath}, r)
		})
	}
}
