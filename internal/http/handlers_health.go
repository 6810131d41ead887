package httpx

import "net/http"

type healthResponse struct {
	Status   string `json:"status"`
	Handlers int    `json:"handlers"`
}

// healthHandler reports liveness plus the size of the dispatch chain, so a
// probe can tell an unwired pipeline (zero handlers) from a healthy one.
// It never raises a failure.
func healthHandler(fw *FailureWriter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			return
		}
		WriteJSON(w, http.StatusOK, healthResponse{Status: "ok", Handlers: fw.chain.Len()})
	}
}
