// Package api serves fault-finding sessions and history over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abhisek/faultdrill/internal/events"
	"github.com/abhisek/faultdrill/internal/feedback"
	"github.com/abhisek/faultdrill/internal/history"
	"github.com/abhisek/faultdrill/internal/scenario"
	"github.com/abhisek/faultdrill/internal/session"
	"github.com/abhisek/faultdrill/internal/timer"
)

// Options configures a Server. Supplier and History are required.
type Options struct {
	Supplier scenario.Supplier
	History  *history.Repo

	// Publisher receives session and history events. Defaults to events.Noop.
	Publisher events.Publisher

	// NewTicker builds the countdown ticker for each session. Defaults to a
	// one-second WallTicker.
	NewTicker func() timer.Ticker

	// CORSOrigins lists allowed origins. Empty disables CORS headers.
	CORSOrigins []string

	// Timeout bounds each request.
	Timeout time.Duration

	// FinishedTTL is how long a session stays readable after reaching
	// results. Defaults to ten minutes.
	FinishedTTL time.Duration

	Logger *zap.Logger
	Now    func() time.Time
}

// Server holds the live sessions.
type Server struct {
	opts Options

	mu       sync.Mutex
	sessions map[string]*liveSession
}

type liveSession struct {
	ctrl *session.Controller
	// finishedAt is set when the session reaches results and cleared by a
	// reset.
	finishedAt time.Time
}

// NewServer creates a Server.
func NewServer(opts Options) *Server {
	if opts.Publisher == nil {
		opts.Publisher = events.Noop{}
	}
	if opts.NewTicker == nil {
		opts.NewTicker = func() timer.Ticker { return timer.NewWallTicker(time.Second) }
	}
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.FinishedTTL == 0 {
		opts.FinishedTTL = 10 * time.Minute
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Server{opts: opts, sessions: make(map[string]*liveSession)}
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, requestLogger(s.opts.Logger), middleware.Recoverer)
	r.Use(middleware.Timeout(s.opts.Timeout))
	if len(s.opts.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.opts.CORSOrigins,
			AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type"},
			ExposedHeaders: []string{"Content-Length"},
			MaxAge:         300,
		}))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/history", s.getHistory)
		r.Delete("/history", s.clearHistory)
		r.Get("/analytics", s.getAnalytics)

		r.Post("/sessions", s.createSession)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", s.getSession)
			r.Delete("/", s.deleteSession)
			r.Post("/events", s.postEvent)
		})
	})
	return r
}

// Close stops every live session's countdown.
func (s *Server) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, ls := range s.sessions {
		ls.ctrl.Close()
		delete(s.sessions, id)
	}
}

// Len reports how many sessions the server is holding.
func (s *Server) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// evictFinished drops sessions whose results have been readable for longer
// than FinishedTTL. Callers hold s.mu.
func (s *Server) evictFinished() {
	now := s.opts.Now()
	for id, ls := range s.sessions {
		if ls.finishedAt.IsZero() || now.Sub(ls.finishedAt) < s.opts.FinishedTTL {
			continue
		}
		ls.ctrl.Close()
		delete(s.sessions, id)
		s.opts.Logger.Debug("finished session evicted", zap.String("session", id))
	}
}

// finished returns the OnClose hook that starts id's eviction clock.
func (s *Server) finished(id string) func(history.SessionRecord) {
	return func(history.SessionRecord) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if ls, ok := s.sessions[id]; ok {
			ls.finishedAt = s.opts.Now()
		}
	}
}

func (s *Server) getHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.opts.History.Load(r.Context()))
}

func (s *Server) clearHistory(w http.ResponseWriter, r *http.Request) {
	if err := s.opts.History.Clear(r.Context()); err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := s.opts.Publisher.Publish(r.Context(), events.HistoryCleared, map[string]any{}); err != nil {
		s.opts.Logger.Warn("event not published", zap.String("type", events.HistoryCleared), zap.Error(err))
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getAnalytics(w http.ResponseWriter, r *http.Request) {
	a := history.Aggregate(s.opts.History.Load(r.Context()))
	writeJSON(w, http.StatusOK, struct {
		history.Analytics
		ShowProgress bool `json:"showProgress"`
	}{a, a.ShowProgress()})
}

type createSessionReq struct {
	Mode string `json:"mode"`
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	mode, err := session.ParseMode(req.Mode)
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}

	id := uuid.NewString()
	ctrl := session.NewController(session.Options{
		Supplier:  s.opts.Supplier,
		Ticker:    s.opts.NewTicker(),
		Recorder:  s.opts.History,
		Sink:      feedback.LogSink{Logger: s.opts.Logger},
		Scheduler: feedback.Immediate{},
		Logger:    s.opts.Logger,
		Now:       s.opts.Now,
		OnClose: []func(history.SessionRecord){
			events.SessionHook(s.opts.Publisher, s.opts.Logger),
			s.finished(id),
		},
	})
	if err := ctrl.Start(mode); err != nil {
		ctrl.Close()
		if errors.Is(err, scenario.ErrSupplyContract) {
			writeErr(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.mu.Lock()
	s.evictFinished()
	s.sessions[id] = &liveSession{ctrl: ctrl}
	s.mu.Unlock()

	s.opts.Logger.Info("session started", zap.String("session", id), zap.String("mode", string(mode)))
	writeJSON(w, http.StatusCreated, newSessionView(id, ctrl))
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (string, *session.Controller, bool) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	s.evictFinished()
	ls, ok := s.sessions[id]
	s.mu.Unlock()
	if !ok {
		writeErr(w, http.StatusNotFound, "session not found")
		return id, nil, false
	}
	return id, ls.ctrl, true
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	id, ctrl, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, newSessionView(id, ctrl))
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	id, ctrl, ok := s.lookup(w, r)
	if !ok {
		return
	}
	ctrl.Close()
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

// eventReq is a learner action. Fields other than Type are read only by the
// types that need them.
type eventReq struct {
	Type      string `json:"type"`
	ReadingID string `json:"readingId"`
	Mode      string `json:"mode"`
	OptionID  string `json:"optionId"`
}

func (s *Server) postEvent(w http.ResponseWriter, r *http.Request) {
	id, ctrl, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var req eventReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	switch strings.ToLower(req.Type) {
	case "record_reading":
		ctrl.RecordReading(req.ReadingID)
	case "set_mode":
		m := scenario.TestMode(req.Mode)
		if !m.Valid() {
			writeErr(w, http.StatusBadRequest, "unknown instrument mode "+req.Mode)
			return
		}
		ctrl.SetInstrument(m)
	case "ready":
		ctrl.ReadyToDiagnose()
	case "back":
		ctrl.Back()
	case "submit":
		ctrl.Submit(req.OptionID)
	case "next":
		ctrl.Next()
	case "hint":
		ctrl.UseHint()
	case "reset":
		ctrl.Reset()
		s.mu.Lock()
		if ls, ok := s.sessions[id]; ok {
			ls.finishedAt = time.Time{}
		}
		s.mu.Unlock()
	default:
		writeErr(w, http.StatusBadRequest, "unknown event type "+req.Type)
		return
	}
	writeJSON(w, http.StatusOK, newSessionView(id, ctrl))
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errResp struct {
	Error string `json:"error"`
}

func writeErr(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errResp{Error: msg})
}

// ListenAndServe runs the server on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.opts.Logger.Info("listening", zap.String("addr", addr))

	select {
	case err := <-errc:
		s.Close()
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.Close()
	return err
}
