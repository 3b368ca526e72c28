package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerLineupRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/lineups/{team}", handler.GetStartingLineup)
	// Runs the pre-game warm-up for every scheduled game on the date.
	mux.HandleFunc("POST /v1/lineups/warmup", handler.RunWarmup)
}
