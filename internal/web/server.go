// Package web exposes the study-session HTTP API.
package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/mnemo/mnemod/internal/catalog"
	"github.com/mnemo/mnemod/internal/domain"
	"github.com/mnemo/mnemod/internal/srs"
	"github.com/mnemo/mnemod/internal/store"
)

// SessionConfig controls due-card selection at the API boundary.
type SessionConfig struct {
	// Limit is the default session size when the request does not give one.
	Limit int `koanf:"limit" validate:"min=1"`
	// Fill pads short sessions with the soonest not-yet-due cards.
	Fill bool `koanf:"fill"`
	// NewPerSession is how many never-reviewed catalog cards may be
	// appended after the due ones. Zero disables new-card introduction.
	NewPerSession int `koanf:"new_per_session" validate:"min=0"`
}

// Server holds the dependencies for the HTTP API.
type Server struct {
	store     store.RecordStore
	catalog   atomic.Pointer[catalog.Catalog]
	loader    *catalog.Loader
	scheduler srs.Config
	session   SessionConfig
	validate  *validator.Validate
	router    *http.ServeMux
}

// NewServer creates and configures a new server. The catalog may be swapped
// later via SetCatalog (the periodic sync job does this).
func NewServer(st store.RecordStore, cat *catalog.Catalog, loader *catalog.Loader, scheduler srs.Config, session SessionConfig) *Server {
	s := &Server{
		store:     st,
		loader:    loader,
		scheduler: scheduler,
		session:   session,
		validate:  validator.New(),
		router:    http.NewServeMux(),
	}
	s.catalog.Store(cat)
	s.routes()
	return s
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// SetCatalog atomically swaps in a freshly loaded catalog.
func (s *Server) SetCatalog(cat *catalog.Catalog) {
	s.catalog.Store(cat)
}

// Resync refreshes git sources, reloads the catalog, and swaps it in.
func (s *Server) Resync() error {
	s.loader.Sync()
	cat, err := s.loader.Load()
	if err != nil {
		return err
	}
	s.SetCatalog(cat)
	return nil
}

// routes sets up the routing for the server.
func (s *Server) routes() {
	s.router.HandleFunc("/healthz", s.handleHealthz())
	s.router.HandleFunc("/cards", s.handleCards())
	s.router.HandleFunc("/due-cards", s.handleDueCards())
	s.router.HandleFunc("/review", s.handleReview())
	s.router.HandleFunc("/stats", s.handleStats())
	s.router.HandleFunc("/reset", s.handleReset())
	s.router.HandleFunc("/sync", s.handleSync())
}

func (s *Server) handleHealthz() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// handleCards lists the full catalog.
func (s *Server) handleCards() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		cat := s.catalog.Load()
		writeJSON(w, http.StatusOK, map[string]any{
			"count": cat.Len(),
			"cards": cat.Cards(),
		})
	}
}

// dueCard is one entry of a study session: the card itself plus why it is
// in the session.
type dueCard struct {
	domain.Flashcard
	DueAt  *time.Time `json:"due_at,omitempty"` // nil for new cards
	New    bool       `json:"new,omitempty"`
	Filled bool       `json:"filled,omitempty"` // not yet due, padded in by the fill policy
}

// handleDueCards assembles a study session: due cards most-overdue first,
// then (optionally) never-reviewed catalog cards up to the configured
// new-card allowance.
func (s *Server) handleDueCards() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		userID := requestUser(r)
		if userID == "" {
			writeError(w, http.StatusBadRequest, "missing X-User-ID")
			return
		}

		opts := srs.SelectOptions{Limit: s.session.Limit, Fill: s.session.Fill}
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 {
				writeError(w, http.StatusBadRequest, "invalid limit")
				return
			}
			opts.Limit = n
		}
		if v := r.URL.Query().Get("fill"); v != "" {
			fill, err := strconv.ParseBool(v)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid fill")
				return
			}
			opts.Fill = fill
		}

		states, err := s.store.ListForUser(r.Context(), userID)
		if err != nil {
			slog.Error("failed to list review states", "user", userID, "error", err)
			writeError(w, http.StatusInternalServerError, "persistence failure")
			return
		}

		now := time.Now().UTC()
		cat := s.catalog.Load()
		byCard := make(map[string]domain.ReviewState, len(states))
		for _, st := range states {
			byCard[st.CardID] = st
		}

		var session []dueCard
		dueCount, filledCount := 0, 0
		for _, id := range srs.SelectDue(states, now, opts) {
			card, ok := cat.Get(id)
			if !ok {
				continue // card was removed from the catalog; state outlives it
			}
			st := byCard[id]
			due := st.DueAt
			entry := dueCard{Flashcard: card, DueAt: &due}
			// The fill policy pads with not-yet-due cards; keep them out
			// of the due count.
			if st.Due(now) {
				dueCount++
			} else {
				entry.Filled = true
				filledCount++
			}
			session = append(session, entry)
		}

		newCount := 0
		for _, card := range cat.Cards() {
			if newCount == s.session.NewPerSession || len(session) >= opts.Limit {
				break
			}
			if _, seen := byCard[card.ID]; seen {
				continue
			}
			session = append(session, dueCard{Flashcard: card, New: true})
			newCount++
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"cards":  session,
			"due":    dueCount,
			"filled": filledCount,
			"new":    newCount,
		})
	}
}

type reviewRequest struct {
	CardID     string        `json:"card_id" validate:"required"`
	Grade      *domain.Grade `json:"grade" validate:"required"`
	ReviewedAt time.Time     `json:"reviewed_at"`
}

// handleReview applies one review outcome: load state, schedule, persist,
// append to the history log.
func (s *Server) handleReview() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		userID := requestUser(r)
		if userID == "" {
			writeError(w, http.StatusBadRequest, "missing X-User-ID")
			return
		}

		var req reviewRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			if errors.Is(err, domain.ErrInvalidGrade) {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := s.validate.Struct(req); err != nil {
			writeError(w, http.StatusBadRequest, "card_id and grade are required")
			return
		}

		if _, ok := s.catalog.Load().Get(req.CardID); !ok {
			writeError(w, http.StatusNotFound, domain.ErrUnknownCard.Error())
			return
		}

		current, err := s.store.Get(r.Context(), userID, req.CardID)
		if err != nil {
			slog.Error("failed to get review state", "user", userID, "card", req.CardID, "error", err)
			writeError(w, http.StatusInternalServerError, "persistence failure")
			return
		}

		outcome := domain.ReviewOutcome{Grade: *req.Grade, ReviewedAt: req.ReviewedAt}
		next, err := srs.Schedule(current, outcome, s.scheduler)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidGrade) {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, "scheduling failure")
			return
		}
		next.UserID = userID
		next.CardID = req.CardID

		if err := s.store.Put(r.Context(), next); err != nil {
			slog.Error("failed to put review state", "user", userID, "card", req.CardID, "error", err)
			writeError(w, http.StatusInternalServerError, "persistence failure")
			return
		}

		// History is advisory; the review itself already succeeded.
		entry := domain.ReviewLog{
			ID:           uuid.NewString(),
			UserID:       userID,
			CardID:       req.CardID,
			Grade:        *req.Grade,
			ReviewedAt:   next.LastReviewedAt,
			IntervalDays: next.IntervalDays,
			EaseFactor:   next.EaseFactor,
		}
		if err := s.store.LogReview(r.Context(), entry); err != nil {
			slog.Warn("failed to append review log", "user", userID, "card", req.CardID, "error", err)
		}

		writeJSON(w, http.StatusOK, next)
	}
}

// handleStats summarizes a user's review state.
func (s *Server) handleStats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		userID := requestUser(r)
		if userID == "" {
			writeError(w, http.StatusBadRequest, "missing X-User-ID")
			return
		}

		states, err := s.store.ListForUser(r.Context(), userID)
		if err != nil {
			slog.Error("failed to list review states", "user", userID, "error", err)
			writeError(w, http.StatusInternalServerError, "persistence failure")
			return
		}

		now := time.Now().UTC()
		var due, lapses int
		var easeSum float64
		for _, st := range states {
			if st.Due(now) {
				due++
			}
			lapses += st.Lapses
			easeSum += st.EaseFactor
		}
		avgEase := 0.0
		if len(states) > 0 {
			avgEase = easeSum / float64(len(states))
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"tracked":      len(states),
			"due_now":      due,
			"total_lapses": lapses,
			"average_ease": avgEase,
		})
	}
}

// handleReset wipes a user's review states. The history log is kept.
func (s *Server) handleReset() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		userID := requestUser(r)
		if userID == "" {
			writeError(w, http.StatusBadRequest, "missing X-User-ID")
			return
		}

		if err := s.store.Reset(r.Context(), userID); err != nil {
			slog.Error("failed to reset review states", "user", userID, "error", err)
			writeError(w, http.StatusInternalServerError, "persistence failure")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// handleSync triggers a manual source refresh and catalog reload. Runs in
// the foreground so the caller sees the result.
func (s *Server) handleSync() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		if err := s.Resync(); err != nil {
			slog.Error("manual sync failed", "error", err)
			writeError(w, http.StatusInternalServerError, "sync failure")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"cards": s.catalog.Load().Len()})
	}
}

// requestUser extracts the caller's user ID. Identity is an opaque string
// supplied by whatever sits in front of this service; there is no ambient
// current-user state.
func requestUser(r *http.Request) string {
	if id := r.Header.Get("X-User-ID"); id != "" {
		return id
	}
	return r.URL.Query().Get("user")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
