package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"fstop/internal/analysis"
	"fstop/internal/api"
	"fstop/internal/config"
	"fstop/internal/fileutil"
	"fstop/internal/logging"
	"fstop/internal/textutil"
)

type apiServer struct {
	bind   string
	logger *slog.Logger
	daemon *Daemon
	cfg    *config.Config

	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) (*apiServer, error) {
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil, nil
	}

	srv := &apiServer{
		bind:   bind,
		logger: logging.NewComponentLogger(logger, "api-server"),
		daemon: d,
		cfg:    cfg,
	}

	router := mux.NewRouter()
	router.Use(authMiddleware(strings.TrimSpace(cfg.Paths.APIToken)))
	router.HandleFunc("/api/analyses", srv.handleSubmit).Methods(http.MethodPost)
	router.HandleFunc("/api/analyses", srv.handleList).Methods(http.MethodGet)
	router.HandleFunc("/api/analyses", srv.handleClear).Methods(http.MethodDelete)
	router.HandleFunc("/api/analyses/{id}", srv.handleGet).Methods(http.MethodGet)
	router.HandleFunc("/api/status", srv.handleStatus).Methods(http.MethodGet)
	router.HandleFunc("/api/health", srv.handleHealth).Methods(http.MethodGet)

	srv.server = &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv, nil
}

func (s *apiServer) start(ctx context.Context) error {
	if s == nil {
		return nil
	}
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
	if s == nil {
		return
	}
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

func (s *apiServer) addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *apiServer) maxUploadBytes() int64 {
	mib := s.cfg.Analysis.MaxUploadMiB
	if mib <= 0 {
		mib = 64
	}
	return int64(mib) << 20
}

func (s *apiServer) handleSubmit(w http.ResponseWriter, r *http.Request) {
	limit := s.maxUploadBytes()
	// Extra headroom for the multipart framing around the file part.
	r.Body = http.MaxBytesReader(w, r.Body, limit+(64<<10))

	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "multipart upload with a 'file' part is required")
		return
	}
	defer file.Close()

	filename := textutil.SanitizeFileName(header.Filename)
	mediaType := strings.TrimSpace(header.Header.Get("Content-Type"))
	if idx := strings.Index(mediaType, ";"); idx >= 0 {
		mediaType = strings.TrimSpace(mediaType[:idx])
	}
	if mediaType == "" || mediaType == "application/octet-stream" {
		if byExt := mime.TypeByExtension(filepath.Ext(filename)); byExt != "" {
			mediaType = byExt
		}
	}
	if mediaType == "" {
		mediaType = "application/octet-stream"
	}

	dst := filepath.Join(s.cfg.Paths.StagingDir, uuid.NewString()+"_"+filename)
	written, err := fileutil.WriteStream(dst, file, limit)
	if err != nil {
		if errors.Is(err, fileutil.ErrTooLarge) {
			s.writeError(w, http.StatusRequestEntityTooLarge, "upload exceeds size limit")
			return
		}
		s.logger.Error("store upload", logging.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to store upload")
		return
	}

	rec, err := s.daemon.store.NewUpload(r.Context(), dst, filename, mediaType, written)
	if err != nil {
		s.logger.Error("record upload", logging.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to record upload")
		return
	}
	s.logger.Info("upload accepted",
		logging.Int64("analysis", rec.ID),
		logging.String("file", filename),
		logging.String("media_type", mediaType),
		logging.Int64("bytes", written))
	s.writeJSON(w, http.StatusCreated, api.AnalysisResponse{Analysis: api.FromRecord(rec)})
}

func (s *apiServer) handleList(w http.ResponseWriter, r *http.Request) {
	var statuses []analysis.Status
	for _, raw := range strings.Split(r.URL.Query().Get("status"), ",") {
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			continue
		}
		status, ok := analysis.ParseStatus(trimmed)
		if !ok {
			s.writeError(w, http.StatusBadRequest,
				"unknown status "+strconv.Quote(trimmed)+" (known: "+knownStatuses()+")")
			return
		}
		statuses = append(statuses, status)
	}

	recs, err := s.daemon.store.List(r.Context(), statuses...)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, api.AnalysisListResponse{Analyses: api.FromRecords(recs)})
}

func (s *apiServer) handleClear(w http.ResponseWriter, r *http.Request) {
	var (
		removed int64
		err     error
	)
	scope := strings.TrimSpace(r.URL.Query().Get("scope"))
	switch scope {
	case "":
		removed, err = s.daemon.store.Clear(r.Context())
		scope = "all"
	case "completed":
		removed, err = s.daemon.store.ClearCompleted(r.Context())
	default:
		s.writeError(w, http.StatusBadRequest, "unknown scope "+strconv.Quote(scope))
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.logger.Info("analyses cleared",
		logging.String("scope", scope),
		logging.Int64("removed", removed))
	s.writeJSON(w, http.StatusOK, api.ClearResponse{Removed: removed})
}

func knownStatuses() string {
	statuses := analysis.AllStatuses()
	names := make([]string, 0, len(statuses))
	for _, status := range statuses {
		names = append(names, string(status))
	}
	return strings.Join(names, ", ")
}

func (s *apiServer) handleGet(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var (
		rec *analysis.Record
		err error
	)
	if numeric, parseErr := strconv.ParseInt(id, 10, 64); parseErr == nil {
		rec, err = s.daemon.store.GetByID(r.Context(), numeric)
	} else {
		rec, err = s.daemon.store.GetByUUID(r.Context(), id)
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if rec == nil {
		s.writeError(w, http.StatusNotFound, "analysis not found")
		return
	}
	s.writeJSON(w, http.StatusOK, api.AnalysisResponse{Analysis: api.FromRecord(rec)})
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := s.daemon.Status(r.Context())
	payload := api.DaemonStatus{
		Running:      status.Running,
		PID:          status.PID,
		DatabasePath: status.DatabasePath,
		LockFilePath: status.LockFilePath,
		StagingDir:   status.StagingDir,
		Counts: map[string]int{
			"pending":    status.Health.Pending,
			"processing": status.Health.Processing,
			"completed":  status.Health.Completed,
			"failed":     status.Health.Failed,
		},
	}
	s.writeJSON(w, http.StatusOK, payload)
}

func (s *apiServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	payload := api.HealthResponse{Status: "ok", Store: "ok", Scoring: "disabled"}
	if _, err := s.daemon.store.Health(r.Context()); err != nil {
		payload.Status = "degraded"
		payload.Store = err.Error()
	}
	if strings.TrimSpace(s.cfg.LLM.APIKey) != "" {
		payload.Scoring = "configured"
	}
	code := http.StatusOK
	if payload.Status != "ok" {
		code = http.StatusServiceUnavailable
	}
	s.writeJSON(w, code, payload)
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
