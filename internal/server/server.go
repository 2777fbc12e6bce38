// Package server exposes recordings and attention sessions over HTTP and
// streams session events over WebSocket.
package server

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cwbudde/algo-eeg/eeg"
	"github.com/cwbudde/algo-eeg/eeg/recording"
	"github.com/cwbudde/algo-eeg/eeg/session"
	"github.com/cwbudde/algo-eeg/eeg/stream"
	"github.com/cwbudde/algo-eeg/internal/config"
)

// Server owns the session registry and the HTTP routes.
type Server struct {
	ctx      context.Context
	cfg      config.Config
	logger   *zap.Logger
	sinks    []session.Sink
	sessions *registry
	router   *gin.Engine
}

// Option configures a [Server].
type Option func(*Server)

// WithSink attaches a sink to every new session.
func WithSink(s session.Sink) Option {
	return func(srv *Server) {
		if s != nil {
			srv.sinks = append(srv.sinks, s)
		}
	}
}

// New builds the router. Session loops run until ctx is done or Close is
// called.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		ctx:      ctx,
		cfg:      cfg,
		logger:   logger,
		sessions: newRegistry(),
	}
	for _, opt := range opts {
		opt(s)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))

	router.GET("/healthz", func(c *gin.Context) { ok(c, gin.H{"status": "ok"}) })

	api := router.Group("/api")
	{
		api.GET("/recordings", s.listRecordings)
		api.GET("/recordings/summary", s.summarizeRecordings)
		api.GET("/recordings/info", s.recordingInfo)

		api.POST("/sessions", s.createSession)
		api.GET("/sessions", s.listSessions)
		api.GET("/sessions/:id", s.withSession(s.getSession))
		api.DELETE("/sessions/:id", s.deleteSession)
		api.POST("/sessions/:id/start", s.withSession(s.startSession))
		api.POST("/sessions/:id/stop", s.withSession(s.stopSession))
		api.POST("/sessions/:id/step", s.withSession(s.stepSession))
		api.POST("/sessions/:id/reset", s.withSession(s.resetSession))
		api.POST("/sessions/:id/seek", s.withSession(s.seekSession))
		api.GET("/sessions/:id/history", s.withSession(s.sessionHistory))
		api.GET("/sessions/:id/ws", s.withSession(s.serveWS))
	}

	s.router = router
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close stops every session.
func (s *Server) Close() {
	s.sessions.stopAll()
}

// resolve maps a client path onto the data directory and rejects paths that
// escape it.
func (s *Server) resolve(p string) (string, error) {
	if p == "" {
		return "", fmt.Errorf("%w: path is required", eeg.ErrParameter)
	}
	root, err := filepath.Abs(s.cfg.Server.DataDir)
	if err != nil {
		return "", err
	}
	full := p
	if !filepath.IsAbs(full) {
		full = filepath.Join(root, full)
	}
	full = filepath.Clean(full)

	rel, err := filepath.Rel(root, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: path %q is outside the data directory", eeg.ErrParameter, p)
	}
	return full, nil
}

type recordingItem struct {
	Path string `json:"path"`
	Name string `json:"name"`
}

func (s *Server) listRecordings(c *gin.Context) {
	paths, err := recording.Discover(s.cfg.Server.DataDir)
	if err != nil {
		failErr(c, err)
		return
	}
	items := make([]recordingItem, 0, len(paths))
	for _, p := range paths {
		rel, err := filepath.Rel(s.cfg.Server.DataDir, p)
		if err != nil {
			rel = p
		}
		items = append(items, recordingItem{Path: filepath.ToSlash(rel), Name: filepath.Base(p)})
	}
	ok(c, items)
}

func (s *Server) summarizeRecordings(c *gin.Context) {
	sum, err := recording.Summarize(s.cfg.Server.DataDir)
	if err != nil {
		fail(c, http.StatusNotFound, err.Error())
		return
	}
	ok(c, sum)
}

func (s *Server) recordingInfo(c *gin.Context) {
	path, err := s.resolve(c.Query("path"))
	if err != nil {
		failErr(c, err)
		return
	}
	info, err := recording.ReadInfo(path)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, info)
}

type createRequest struct {
	Path          string   `json:"path" binding:"required"`
	ChunkSeconds  *float64 `json:"chunk_seconds"`
	WindowSeconds *float64 `json:"window_seconds"`
	HighPassHz    *float64 `json:"high_pass_hz"`
	LowPassHz     *float64 `json:"low_pass_hz"`
	NotchHz       *float64 `json:"notch_hz"`
	Speed         *float64 `json:"speed"`
	Bad           []string `json:"bad_channels"`
}

type sessionInfo struct {
	session.Status
	Path    string    `json:"path"`
	Created time.Time `json:"created"`
}

func (e *entry) info() sessionInfo {
	return sessionInfo{Status: e.monitor.Status(), Path: e.path, Created: e.created}
}

func (s *Server) createSession(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	cfg := s.cfg
	override := func(dst *float64, v *float64) {
		if v != nil {
			*dst = *v
		}
	}
	override(&cfg.Analysis.ChunkSeconds, req.ChunkSeconds)
	override(&cfg.Analysis.WindowSeconds, req.WindowSeconds)
	override(&cfg.Analysis.HighPassHz, req.HighPassHz)
	override(&cfg.Analysis.LowPassHz, req.LowPassHz)
	override(&cfg.Analysis.NotchHz, req.NotchHz)
	override(&cfg.Analysis.Speed, req.Speed)
	if err := cfg.Validate(); err != nil {
		failErr(c, err)
		return
	}

	path, err := s.resolve(req.Path)
	if err != nil {
		failErr(c, err)
		return
	}
	rec, err := recording.Open(path)
	if err != nil {
		failErr(c, err)
		return
	}
	if len(req.Bad) > 0 {
		if err := rec.MarkBad(req.Bad...); err != nil {
			fail(c, http.StatusBadRequest, err.Error())
			return
		}
	}

	var a stream.Analyzer
	if err := a.Initialize(c.Request.Context(), rec, cfg.Analysis.Stream(), cfg.Analysis.PrepareOptions()...); err != nil {
		failErr(c, err)
		return
	}

	id := uuid.New()
	opts := []session.Option{
		session.WithID(id.String()),
		session.WithLogger(s.logger),
		session.WithHistorySize(cfg.Analysis.HistorySize),
		session.WithSpeed(cfg.Analysis.Speed),
	}
	for _, sink := range s.sinks {
		opts = append(opts, session.WithSink(sink))
	}
	m, err := session.New(&a, opts...)
	if err != nil {
		failErr(c, err)
		return
	}

	e := &entry{monitor: m, path: req.Path, created: time.Now()}
	s.sessions.add(id, e)
	s.logger.Info("session created",
		zap.String("session_id", id.String()),
		zap.String("path", path),
		zap.Int("channels", len(a.Signal().Channels)),
		zap.Float64("duration", a.TotalDuration()),
	)
	created(c, e.info())
}

func (s *Server) listSessions(c *gin.Context) {
	entries := s.sessions.list()
	out := make([]sessionInfo, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.info())
	}
	ok(c, out)
}

func (s *Server) lookup(c *gin.Context) (uuid.UUID, *entry, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, nil, fmt.Errorf("%w: invalid session id", eeg.ErrParameter)
	}
	e, found := s.sessions.get(id)
	if !found {
		return id, nil, errSessionNotFound
	}
	return id, e, nil
}

func (s *Server) withSession(h func(*gin.Context, *entry)) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, e, err := s.lookup(c)
		if err != nil {
			failErr(c, err)
			return
		}
		h(c, e)
	}
}

func (s *Server) getSession(c *gin.Context, e *entry) {
	ok(c, e.info())
}

func (s *Server) deleteSession(c *gin.Context) {
	id, _, err := s.lookup(c)
	if err != nil {
		failErr(c, err)
		return
	}
	s.sessions.remove(id)
	s.logger.Info("session deleted", zap.String("session_id", id.String()))
	c.Status(http.StatusNoContent)
}

func (s *Server) startSession(c *gin.Context, e *entry) {
	if err := e.monitor.Start(s.ctx); err != nil {
		failErr(c, err)
		return
	}
	ok(c, e.info())
}

func (s *Server) stopSession(c *gin.Context, e *entry) {
	e.monitor.Stop()
	ok(c, e.info())
}

func (s *Server) stepSession(c *gin.Context, e *entry) {
	tick, err := e.monitor.Step(c.Request.Context())
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, tick)
}

func (s *Server) resetSession(c *gin.Context, e *entry) {
	if err := e.monitor.Reset(); err != nil {
		failErr(c, err)
		return
	}
	ok(c, e.info())
}

type seekRequest struct {
	Time *float64 `json:"time" binding:"required"`
}

func (s *Server) seekSession(c *gin.Context, e *entry) {
	var req seekRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := e.monitor.Seek(*req.Time); err != nil {
		failErr(c, err)
		return
	}
	ok(c, e.info())
}

func (s *Server) sessionHistory(c *gin.Context, e *entry) {
	ok(c, e.monitor.History())
}
