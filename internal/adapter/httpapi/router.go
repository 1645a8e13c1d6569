package httpapi

import "net/http"

// NewRouter mounts the API routes. CORS and request logging wrap the mux
// at the server layer.
func NewRouter(handler *Handler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", handler.healthz)
	mux.HandleFunc("GET /api/v1/words", handler.words)
	mux.HandleFunc("POST /api/v1/progress/view", handler.recordView)
	mux.HandleFunc("POST /api/v1/progress/mastery", handler.recordMastery)
	mux.HandleFunc("POST /api/v1/progress/test", handler.recordTest)
	mux.HandleFunc("POST /api/v1/progress/sync", handler.syncNow)
	mux.HandleFunc("DELETE /api/v1/progress", handler.reset)

	return withJSONContentType(mux)
}

func withJSONContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && r.Header.Get("Content-Type") == "" {
			r.Header.Set("Content-Type", "application/json")
		}
		next.ServeHTTP(w, r)
	})
}
