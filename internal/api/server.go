// Package api exposes the matching workers over HTTP. Each endpoint runs the
// same Execute path as the corresponding Zeebe job.
package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"pawmatch-workers/internal/common/database"
	apperrors "pawmatch-workers/internal/common/errors"
	"pawmatch-workers/internal/common/logger"
	"pawmatch-workers/internal/matchstore"
	explainmatch "pawmatch-workers/internal/workers/matching/explain-match"
	rankcandidates "pawmatch-workers/internal/workers/matching/rank-candidates"
	scorecandidate "pawmatch-workers/internal/workers/matching/score-candidate"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const maxBodyBytes = 1 << 20

// HistoryStore reads the shown-match log.
type HistoryStore interface {
	History(ctx context.Context, userID string, limit int) ([]matchstore.ShownMatch, error)
	ShownCounts(ctx context.Context, userID string, candidateIDs []string) (map[string]int, error)
}

type Options struct {
	Score        *scorecandidate.Handler
	Rank         *rankcandidates.Handler
	Explain      *explainmatch.Handler
	History      HistoryStore
	Dependencies map[string]database.Pinger
	ReadyTimeout time.Duration
	Logger       logger.Logger
}

type Server struct {
	score        *scorecandidate.Handler
	rank         *rankcandidates.Handler
	explain      *explainmatch.Handler
	history      HistoryStore
	deps         map[string]database.Pinger
	readyTimeout time.Duration
	log          logger.Logger
}

func NewServer(opts Options) *Server {
	log := opts.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	timeout := opts.ReadyTimeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Server{
		score:        opts.Score,
		rank:         opts.Rank,
		explain:      opts.Explain,
		history:      opts.History,
		deps:         opts.Dependencies,
		readyTimeout: timeout,
		log:          log.WithFields(map[string]interface{}{"component": "api"}),
	}
}

// Router registers every route. Endpoints whose backing handler is nil are
// left out.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.logRequests)

	r.HandleFunc("/health", s.Health).Methods(http.MethodGet)
	r.HandleFunc("/ready", s.Ready).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	v1 := r.PathPrefix("/v1").Subrouter()
	if s.score != nil {
		v1.HandleFunc("/matches/score", s.Score).Methods(http.MethodPost)
	}
	if s.rank != nil {
		v1.HandleFunc("/matches/rank", s.Rank).Methods(http.MethodPost)
	}
	if s.explain != nil {
		v1.HandleFunc("/matches/explain", s.Explain).Methods(http.MethodPost)
	}
	if s.history != nil {
		v1.HandleFunc("/adopters/{userId}/matches", s.History).Methods(http.MethodGet)
		v1.HandleFunc("/adopters/{userId}/shown-counts", s.ShownCounts).Methods(http.MethodGet)
	}
	return r
}

// Score handles POST /v1/matches/score.
func (s *Server) Score(w http.ResponseWriter, r *http.Request) {
	var input scorecandidate.Input
	if !s.decode(w, r, &input) {
		return
	}
	out, err := s.score.Execute(r.Context(), &input)
	if err != nil {
		s.writeError(w, scorecandidate.ToStandardError(err))
		return
	}
	s.writeJSON(w, http.StatusOK, out)
}

// Rank handles POST /v1/matches/rank.
func (s *Server) Rank(w http.ResponseWriter, r *http.Request) {
	var input rankcandidates.Input
	if !s.decode(w, r, &input) {
		return
	}
	out, err := s.rank.Execute(r.Context(), &input)
	if err != nil {
		s.writeError(w, rankcandidates.ToStandardError(err))
		return
	}
	s.writeJSON(w, http.StatusOK, out)
}

// Explain handles POST /v1/matches/explain.
func (s *Server) Explain(w http.ResponseWriter, r *http.Request) {
	var input explainmatch.Input
	if !s.decode(w, r, &input) {
		return
	}
	out, err := s.explain.Execute(r.Context(), &input)
	if err != nil {
		s.writeError(w, explainmatch.ToStandardError(err))
		return
	}
	s.writeJSON(w, http.StatusOK, out)
}

type historyResponse struct {
	UserID  string                  `json:"userId"`
	Matches []matchstore.ShownMatch `json:"matches"`
	Total   int                     `json:"total"`
}

// History handles GET /v1/adopters/{userId}/matches?limit=N.
func (s *Server) History(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			s.writeError(w, apperrors.NewInvalidAdopterProfileError("limit must be a non-negative integer"))
			return
		}
		limit = n
	}

	matches, err := s.history.History(r.Context(), userID, limit)
	if err != nil {
		s.writeError(w, toStandardError(err))
		return
	}
	s.writeJSON(w, http.StatusOK, historyResponse{UserID: userID, Matches: matches, Total: len(matches)})
}

// ShownCounts handles GET /v1/adopters/{userId}/shown-counts?ids=a,b.
func (s *Server) ShownCounts(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]

	var ids []string
	for _, raw := range r.URL.Query()["ids"] {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
	}

	counts, err := s.history.ShownCounts(r.Context(), userID, ids)
	if err != nil {
		s.writeError(w, toStandardError(err))
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"userId": userID, "counts": counts})
}

// Health reports process liveness.
func (s *Server) Health(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready pings every backing store and answers 503 when any is down.
func (s *Server) Ready(w http.ResponseWriter, r *http.Request) {
	failures := database.CheckAll(r.Context(), s.readyTimeout, s.deps)

	checks := make(map[string]string, len(s.deps))
	for name := range s.deps {
		checks[name] = "ok"
	}
	for name, err := range failures {
		checks[name] = err.Error()
	}

	status, code := "ready", http.StatusOK
	if len(failures) > 0 {
		status, code = "not ready", http.StatusServiceUnavailable
		s.log.Warn("readiness check failed", map[string]interface{}{"failures": checks})
	}
	s.writeJSON(w, code, map[string]interface{}{"status": status, "checks": checks})
}
