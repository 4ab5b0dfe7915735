package api

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"
)

func NewRouter(a *API) http.Handler {
	mux := http.NewServeMux()

	// Swagger documentation - must be registered first
	mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("http://localhost:8080/swagger/doc.json"),
	))

	// Liveness (for Railway, k8s, etc.)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	// Resume endpoints
	mux.HandleFunc("/api/resume/extract", a.ExtractHandler)
	mux.HandleFunc("/api/resume/extract/async", a.ExtractAsyncHandler)
	mux.HandleFunc("/api/resume/jobs/", a.JobStatusHandler)
	mux.HandleFunc("/api/resume/health", a.HealthHandler)

	return mux
}
