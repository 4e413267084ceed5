package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"livepoll/internal/domain/poll"
	"livepoll/internal/domain/vote"
	"livepoll/internal/event"
	"livepoll/internal/pubsub"
)

type pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	pollSvc *poll.Service
	voteSvc *vote.Service
	hub     *pubsub.Hub
	voteCh  chan<- event.VoteEvent
	db      *sql.DB
	cache   pinger
}

func NewRouter(
	pollSvc *poll.Service,
	voteSvc *vote.Service,
	hub *pubsub.Hub,
	voteCh chan<- event.VoteEvent,
	db *sql.DB,
	cache pinger,
) http.Handler {
	h := &Handler{
		pollSvc: pollSvc,
		voteSvc: voteSvc,
		hub:     hub,
		voteCh:  voteCh,
		db:      db,
		cache:   cache,
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(RequestLogger)
	r.Use(CORSMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/ready", h.handleReady)
	r.Get("/swagger/*", httpSwagger.WrapHandler)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	// The websocket route stays outside the timeout middleware: a
	// subscription outlives any single request budget.
	r.Get("/ws/polls/{id}", h.handlePollWS)

	r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(60 * time.Second))

		r.Get("/polls/results", h.handleActivePollResults)
		r.Get("/polls/{id}", h.handleGetPoll)
		r.Get("/polls/{id}/results", h.handlePollResults)
		r.With(RateLimitVotes(rate.Every(time.Second), 5)).Post("/polls/{id}/votes", h.handleVote)
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func parseIDParam(r *http.Request, name string) (int64, error) {
	idStr := chi.URLParam(r, name)
	return strconv.ParseInt(idStr, 10, 64)
}

func (h *Handler) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if h.db == nil || h.db.PingContext(ctx) != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error":   "db_unavailable",
			"message": "database not ready",
		})
		return
	}

	if h.cache == nil || h.cache.Ping(ctx) != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error":   "cache_unavailable",
			"message": "cache not ready",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
