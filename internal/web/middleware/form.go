package middleware

import "net/http"

// maxFormSize caps the body of form posts.
const maxFormSize = 10 << 20

// ParseForm parses the request body into r.PostForm before the route handler
// runs. Malformed bodies are rejected with 400.
func ParseForm(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxFormSize)
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Error parsing form", http.StatusBadRequest)
			return
		}
		next.ServeHTTP(w, r)
	})
}
