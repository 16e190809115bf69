package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"log/slog"

	"clipvault/internal/api"
	"clipvault/internal/assetkey"
	"clipvault/internal/clips"
	"clipvault/internal/config"
	"clipvault/internal/deps"
	"clipvault/internal/logging"
	"clipvault/internal/services"
)

type apiServer struct {
	bind   string
	logger *slog.Logger
	daemon *Daemon

	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) (*apiServer, error) {
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil, errors.New("api bind address not configured")
	}

	srv := &apiServer{
		bind:   bind,
		logger: logging.NewComponentLogger(logger, "api-server"),
		daemon: d,
	}

	token := strings.TrimSpace(cfg.Paths.APIToken)
	mux := http.NewServeMux()
	mux.HandleFunc("/api/status", authMiddleware(token, srv.handleStatus))
	mux.HandleFunc("/api/ingest", authMiddleware(token, srv.handleIngest))
	mux.HandleFunc("/api/clips", authMiddleware(token, srv.handleClips))
	mux.HandleFunc("/api/clips/", authMiddleware(token, srv.handleClip))
	mux.HandleFunc("/api/cache/prefetch", authMiddleware(token, srv.handlePrefetch))
	mux.HandleFunc("/api/cache/clear", authMiddleware(token, srv.handleCacheClear))
	// Playback is intentionally unauthenticated: video URLs are handed to
	// players that cannot attach headers.
	mux.HandleFunc("/api/videos/", srv.handleVideo)

	srv.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      10 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}
	return srv, nil
}

func (s *apiServer) start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

// addr returns the bound address once listening, or empty.
func (s *apiServer) addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	status := s.daemon.Status()
	payload := api.StatusResponse{
		Running:      status.Running,
		PID:          status.PID,
		Bucket:       status.Bucket,
		ClipsDBPath:  status.ClipsDBPath,
		LockFilePath: status.LockFilePath,
		Cache:        status.Cache,
		Dependencies: convertDeps(status.Dependencies),
	}
	s.writeJSON(w, http.StatusOK, payload)
}

func (s *apiServer) handleIngest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req api.IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	result, err := s.daemon.pipeline.Ingest(r.Context(), req.Reference)
	if err != nil {
		s.writeError(w, ingestStatusCode(err), err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, api.IngestResponse{
		Key:          result.Key,
		URL:          result.URL,
		Deduplicated: result.Deduplicated,
	})
}

func (s *apiServer) handleClips(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleClipList(w, r)
	case http.MethodPost:
		s.handleClipAdd(w, r)
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *apiServer) handleClipList(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := clips.ListFilter{
		Search:    query.Get("search"),
		EventType: clips.EventType(query.Get("event_type")),
	}
	if limit, err := strconv.Atoi(query.Get("limit")); err == nil {
		filter.Limit = limit
	}
	list, err := s.daemon.store.List(r.Context(), filter)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, api.ClipListResponse{Clips: list})
}

func (s *apiServer) handleClipAdd(w http.ResponseWriter, r *http.Request) {
	var req api.AddClipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !clips.ValidEventType(req.EventType) {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown event type %q", req.EventType))
		return
	}

	result, err := s.daemon.pipeline.Ingest(r.Context(), req.Reference)
	if err != nil {
		s.writeError(w, ingestStatusCode(err), err.Error())
		return
	}

	clip, err := s.daemon.store.Add(r.Context(), clips.NewClip{
		Reference:  req.Reference,
		ObjectKey:  result.Key,
		VideoURL:   result.URL,
		Player:     req.Player,
		Tournament: req.Tournament,
		EventType:  clips.EventType(req.EventType),
		Tags:       req.Tags,
		Notes:      req.Notes,
	})
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusCreated, api.ClipResponse{Clip: clip})
}

func (s *apiServer) handleClip(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/clips/")
	if id == "" || strings.Contains(id, "/") {
		s.writeError(w, http.StatusNotFound, "clip not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		clip, err := s.daemon.store.Get(r.Context(), id)
		if err != nil {
			s.writeClipError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, api.ClipResponse{Clip: clip})
	case http.MethodPatch:
		s.handleClipUpdate(w, r, id)
	case http.MethodDelete:
		if err := s.daemon.store.Remove(r.Context(), id); err != nil {
			s.writeClipError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]string{"removed": id})
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *apiServer) handleClipUpdate(w http.ResponseWriter, r *http.Request, id string) {
	var req api.UpdateClipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	clip, err := s.daemon.store.Get(r.Context(), id)
	if err != nil {
		s.writeClipError(w, err)
		return
	}
	if req.Player != nil {
		clip.Player = *req.Player
	}
	if req.Tournament != nil {
		clip.Tournament = *req.Tournament
	}
	if req.EventType != nil {
		if !clips.ValidEventType(*req.EventType) {
			s.writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown event type %q", *req.EventType))
			return
		}
		clip.EventType = clips.EventType(*req.EventType)
	}
	if req.Tags != nil {
		clip.Tags = *req.Tags
	}
	if req.Notes != nil {
		clip.Notes = *req.Notes
	}

	if err := s.daemon.store.Update(r.Context(), clip); err != nil {
		s.writeClipError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.ClipResponse{Clip: clip})
}

func (s *apiServer) handlePrefetch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req api.PrefetchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.daemon.cache.Prefetch(req.Keys)
	s.writeJSON(w, http.StatusAccepted, map[string]int{"requested": len(req.Keys)})
}

func (s *apiServer) handleCacheClear(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.daemon.cache.Clear()
	s.writeJSON(w, http.StatusOK, s.daemon.cache.Stats())
}

// handleVideo serves clip bytes through the media cache. An unavailable blob
// degrades to 404; it never takes the server down.
func (s *apiServer) handleVideo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	raw := strings.TrimPrefix(r.URL.Path, "/api/videos/")
	if raw == "" || strings.Contains(raw, "/") {
		s.writeError(w, http.StatusNotFound, "video not found")
		return
	}
	key, err := assetkey.Resolve(strings.TrimSuffix(raw, assetkey.Extension))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	data, ok := s.daemon.cache.Get(r.Context(), key)
	if !ok {
		s.writeError(w, http.StatusNotFound, "video not available")
		return
	}

	// Objects are immutable once stored, so clients may cache forever.
	w.Header().Set("Content-Type", "video/mp4")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		s.logger.Debug("video write aborted", logging.Error(err))
	}
}

func convertDeps(statuses []deps.Status) []api.DependencyStatus {
	out := make([]api.DependencyStatus, len(statuses))
	for i, dep := range statuses {
		out[i] = api.DependencyStatus{
			Name:        dep.Name,
			Command:     dep.Command,
			Description: dep.Description,
			Optional:    dep.Optional,
			Available:   dep.Available,
			Detail:      dep.Detail,
		}
	}
	return out
}

// ingestStatusCode maps pipeline failure markers to HTTP statuses.
func ingestStatusCode(err error) int {
	switch {
	case errors.Is(err, services.ErrInvalidReference):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrStoreUnavailable):
		return http.StatusBadGateway
	case errors.Is(err, services.ErrTranscodeTimeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (s *apiServer) writeClipError(w http.ResponseWriter, err error) {
	if errors.Is(err, clips.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "clip not found")
		return
	}
	s.writeError(w, http.StatusInternalServerError, err.Error())
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, api.ErrorResponse{Error: message})
}
