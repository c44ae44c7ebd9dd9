package staking_test

import (
	"net/http"
	"strings"
)

// handleFunc registers h for a Go 1.22-style "METHOD /path" mux pattern.
// Go 1.21's ServeMux has no method matching, so the method is enforced here,
// answering 405 for the wrong method just like the Go 1.22 mux.
func handleFunc(mux *http.ServeMux, pattern string, h http.HandlerFunc) {
	method, path, ok := strings.Cut(pattern, " ")
	if !ok {
		mux.HandleFunc(pattern, h)
		return
	}
	mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}
		h(w, r)
	})
}
