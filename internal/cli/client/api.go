// Package client is the HTTP client the CLI uses to talk to the
// TuneDeck daemon.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/tunedeck/tunedeck/internal/domain/discovery"
	"github.com/tunedeck/tunedeck/internal/domain/registry"
	"github.com/tunedeck/tunedeck/internal/domain/run"
	"github.com/tunedeck/tunedeck/internal/domain/tool"
	"github.com/tunedeck/tunedeck/internal/domain/workspace"
)

type ControlClient struct {
	baseURL string
	client  *http.Client
}

func NewControlClient(baseURL string, timeout time.Duration) *ControlClient {
	return &ControlClient{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *ControlClient) ListTools() ([]registry.Entry, error) {
	var entries []registry.Entry
	err := c.get("/api/tools", &entries)
	return entries, err
}

// DiscoveryReport is the daemon's answer to a discovery request.
type DiscoveryReport struct {
	Registered int                 `json:"registered"`
	Failures   []discovery.Failure `json:"failures"`
}

func (c *ControlClient) DiscoverTools(directory string) (*DiscoveryReport, error) {
	body := map[string]string{"directory": directory}
	var report DiscoveryReport
	err := c.post("/api/tools/discover", body, &report)
	return &report, err
}

func (c *ControlClient) CallTool(name string, inputs map[string]any) (*tool.Outcome, error) {
	body := map[string]any{
		"tool":   name,
		"inputs": inputs,
	}
	var outcome tool.Outcome
	err := c.post("/api/tools/call", body, &outcome)
	return &outcome, err
}

func (c *ControlClient) ListRuns() ([]*run.Run, error) {
	var runs []*run.Run
	err := c.get("/api/runs", &runs)
	return runs, err
}

func (c *ControlClient) CreateRun(name, baseModel, datasetPath, preset string) (*run.Run, error) {
	body := map[string]string{
		"name":         name,
		"base_model":   baseModel,
		"dataset_path": datasetPath,
		"preset":       preset,
	}
	var created run.Run
	err := c.post("/api/runs", body, &created)
	return &created, err
}

func (c *ControlClient) Preflight(runID string) (*run.PreflightReport, error) {
	body := map[string]string{"run_id": runID}
	var report run.PreflightReport
	err := c.post("/api/runs/preflight", body, &report)
	return &report, err
}

type Status struct {
	Running bool   `json:"running"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
	Tools   int    `json:"tools"`
}

func (c *ControlClient) GetStatus() (*Status, error) {
	var status Status
	err := c.get("/api/status", &status)
	return &status, err
}

func (c *ControlClient) GetSettings() (*workspace.Settings, error) {
	var settings workspace.Settings
	err := c.get("/api/settings", &settings)
	return &settings, err
}

func (c *ControlClient) get(path string, out any) error {
	resp, err := c.client.Get(c.baseURL + path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("daemon returned %s for GET %s", resp.Status, path)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *ControlClient) post(path string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}

	resp, err := c.client.Post(c.baseURL+path, "application/json", bytes.NewReader(data))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("daemon returned %s for POST %s", resp.Status, path)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
