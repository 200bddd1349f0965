package middleware

import (
	"net/http"
	"time"
)

// RequestObserver records the outcome of a routed request.
type RequestObserver interface {
	ObserveRequest(route, method string, status int, elapsed time.Duration)
}

// Instrument reports every request served by next under the route label.
func Instrument(route string, observer RequestObserver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := wrap(w)
			next.ServeHTTP(rw, r)
			observer.ObserveRequest(route, r.Method, rw.statusCode, time.Since(start))
		})
	}
}
