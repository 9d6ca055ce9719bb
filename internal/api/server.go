// Package api exposes the daemon's control surface over HTTP.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/tunedeck/tunedeck/internal/domain/discovery"
	"github.com/tunedeck/tunedeck/internal/domain/registry"
	"github.com/tunedeck/tunedeck/internal/domain/run"
	"github.com/tunedeck/tunedeck/internal/domain/workspace"
	"github.com/tunedeck/tunedeck/internal/logger"
)

// Version is the daemon version reported by /api/status.
const Version = "0.3.0"

// ControlServer handles management requests: tool catalog, invocation,
// runs, and settings.
type ControlServer struct {
	mux      *http.ServeMux
	registry *registry.Registry
	runs     *run.Store
	store    *workspace.Store
	settings workspace.Settings
	started  time.Time
}

// NewControlServer creates a new management server.
func NewControlServer(reg *registry.Registry, runs *run.Store, store *workspace.Store, settings workspace.Settings) *ControlServer {
	s := &ControlServer{
		mux:      http.NewServeMux(),
		registry: reg,
		runs:     runs,
		store:    store,
		settings: settings,
		started:  time.Now(),
	}
	s.routes()
	return s
}

func (s *ControlServer) routes() {
	s.mux.HandleFunc("GET /api/tools", s.handleListTools)
	s.mux.HandleFunc("POST /api/tools/discover", s.handleDiscoverTools)
	s.mux.HandleFunc("POST /api/tools/call", s.handleCallTool)
	s.mux.HandleFunc("DELETE /api/tools", s.handleClearTools)
	s.mux.HandleFunc("GET /api/runs", s.handleListRuns)
	s.mux.HandleFunc("POST /api/runs", s.handleCreateRun)
	s.mux.HandleFunc("POST /api/runs/preflight", s.handlePreflight)
	s.mux.HandleFunc("GET /api/status", s.handleStatus)
	s.mux.HandleFunc("GET /api/settings", s.handleGetSettings)
	s.mux.HandleFunc("PUT /api/settings", s.handleUpdateSettings)
	s.mux.HandleFunc("GET /api/logs", s.handleGetLogs)
}

func (s *ControlServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Global CORS headers
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	s.mux.ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (s *ControlServer) handleListTools(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.registry.Entries())
}

func (s *ControlServer) handleDiscoverTools(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Directory string `json:"directory"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	dir := req.Directory
	if dir == "" {
		dir = s.settings.ToolsDir
	}

	count, failures, err := s.registry.DiscoverTools(dir)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Registered int                 `json:"registered"`
		Failures   []discovery.Failure `json:"failures"`
	}{count, failures})
}

func (s *ControlServer) handleCallTool(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Tool   string         `json:"tool"`
		Inputs map[string]any `json:"inputs"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Tool == "" {
		http.Error(w, "tool name is required", http.StatusBadRequest)
		return
	}
	if req.Inputs == nil {
		req.Inputs = map[string]any{}
	}

	// Outcomes are data: every invocation answers 200 and the caller
	// switches on status.
	outcome := s.registry.Invoke(r.Context(), req.Tool, req.Inputs)
	writeJSON(w, http.StatusOK, outcome)
}

func (s *ControlServer) handleClearTools(w http.ResponseWriter, r *http.Request) {
	s.registry.Clear()
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

func (s *ControlServer) handleListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := s.runs.Load()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *ControlServer) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string               `json:"name"`
		BaseModel   string               `json:"base_model"`
		DatasetPath string               `json:"dataset_path"`
		Preset      string               `json:"preset"`
		Params      *run.Hyperparameters `json:"params"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	params := run.DefaultPresets()["balanced"]
	if req.Preset != "" {
		presets, err := run.LoadPresets(s.settings.PresetsPath)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		p, ok := presets[req.Preset]
		if !ok {
			http.Error(w, "unknown preset: "+req.Preset, http.StatusBadRequest)
			return
		}
		params = p
	}
	if req.Params != nil {
		params = *req.Params
	}

	newRun, err := run.New(req.Name, req.BaseModel, req.DatasetPath, params)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := s.runs.Append(newRun); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	logger.AddLog("INFO", "created run "+newRun.ID+" ("+newRun.Name+")")
	writeJSON(w, http.StatusCreated, newRun)
}

func (s *ControlServer) handlePreflight(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RunID string `json:"run_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	target, err := s.runs.Get(req.RunID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Minute)
	defer cancel()
	report := target.Preflight(ctx, s.registry, s.settings.PreflightTools)
	writeJSON(w, http.StatusOK, report)
}

func (s *ControlServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Running bool   `json:"running"`
		Version string `json:"version"`
		Uptime  string `json:"uptime"`
		Tools   int    `json:"tools"`
	}{true, Version, time.Since(s.started).Round(time.Second).String(), s.registry.Len()})
}

func (s *ControlServer) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.settings)
}

func (s *ControlServer) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var settings workspace.Settings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.settings = settings
	if s.store != nil {
		if err := s.store.Save(s.settings); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}

	writeJSON(w, http.StatusOK, s.settings)
}

func (s *ControlServer) handleGetLogs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, logger.GetLogs())
}
