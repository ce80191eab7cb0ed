package cors

import (
	"net/http"
)

const (
	// allowedMethods is the set of methods accepted on the API.
	allowedMethods = "POST, OPTIONS"
	// allowedHeaders is the set of request headers accepted on the API.
	allowedHeaders = "Content-Type"
)

type middleware struct {
	http.Handler
	Origin string
}

// ServeHTTP handles incoming HTTP requests, setting the CORS headers on all
// responses and short-circuiting OPTIONS preflight requests with a 200 and no
// body.
func (m middleware) ServeHTTP(
	w http.ResponseWriter,
	r *http.Request,
) {
	origin := m.Origin
	if origin == "" {
		origin = "*"
	}
	w.Header().Set("Access-Control-Allow-Origin", origin)
	w.Header().Set("Access-Control-Allow-Methods", allowedMethods)
	w.Header().Set("Access-Control-Allow-Headers", allowedHeaders)

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	m.Handler.ServeHTTP(w, r)
}

// Middleware returns a middleware that sets the CORS headers for the
// specified allowed origin (`*` if empty) and handles preflight requests.
func Middleware(
	origin string,
) func(http.Handler) http.Handler {
	return func(h http.Handler) http.Handler {
		return middleware{h, origin}
	}
}
