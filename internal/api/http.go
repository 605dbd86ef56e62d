package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Prabhashwara2003/multiplayer-matchmaking-service/internal/match"
	"github.com/Prabhashwara2003/multiplayer-matchmaking-service/internal/rating"
	"github.com/Prabhashwara2003/multiplayer-matchmaking-service/internal/ws"
	"github.com/Prabhashwara2003/multiplayer-matchmaking-service/pkg/types"
)

type router struct {
	eng     *match.Engine
	ratings *rating.Store
	h       *ws.Hub
}

func NewRouter(eng *match.Engine, ratings *rating.Store, h *ws.Hub) http.Handler {
	r := &router{eng: eng, ratings: ratings, h: h}

	mux := chi.NewRouter()
	mux.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)

	mux.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	mux.Handle("/metrics", promhttp.Handler())

	mux.Post("/queue/join", r.handleJoin)
	mux.Post("/queue/leave", r.handleLeave)
	mux.Get("/match/{playerID}", r.handleGetMatch)
	mux.Post("/match/accept", r.handleAccept)
	mux.Post("/match/result", r.handleResult)
	mux.Get("/player/{playerID}", r.handleGetPlayer)
	mux.Get("/ws", r.handleWS)

	return mux
}

func (r *router) handleJoin(w http.ResponseWriter, req *http.Request) {
	var body types.JoinRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !r.eng.JoinParty(req.Context(), body.PlayerIDs, body.Region, body.Ratings) {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"status": "failed", "reason": "already queued or matched (or invalid party)",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "queued", "queue_size": r.eng.QueueSize()})
}

func (r *router) handleLeave(w http.ResponseWriter, req *http.Request) {
	var body types.LeaveRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !r.eng.LeaveQueue(body.PlayerID) {
		writeJSON(w, http.StatusNotFound, map[string]any{"status": "not_found_in_queue"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "left", "queue_size": r.eng.QueueSize()})
}

func (r *router) handleGetMatch(w http.ResponseWriter, req *http.Request) {
	m, ok := r.eng.GetMatchForPlayer(chi.URLParam(req, "playerID"))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"status": "no_match_yet"})
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (r *router) handleAccept(w http.ResponseWriter, req *http.Request) {
	var body types.AcceptRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !r.eng.AcceptMatch(body.PlayerID) {
		writeJSON(w, http.StatusBadRequest, map[string]any{"status": "failed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "accepted"})
}

func (r *router) handleResult(w http.ResponseWriter, req *http.Request) {
	var body types.ResultRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !r.eng.ReportMatchResult(req.Context(), body.MatchID, body.WinningTeam) {
		writeJSON(w, http.StatusBadRequest, map[string]any{"status": "failed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "recorded"})
}

func (r *router) handleGetPlayer(w http.ResponseWriter, req *http.Request) {
	p, ok := r.ratings.Get(chi.URLParam(req, "playerID"))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"status": "unknown_player"})
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (r *router) handleWS(w http.ResponseWriter, req *http.Request) {
	ws.ServeWS(r.h, w, req)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
