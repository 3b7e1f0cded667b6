package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/JarlLyng/SampleDrumConverter/internal/batch"
	"github.com/JarlLyng/SampleDrumConverter/internal/config"
	"github.com/JarlLyng/SampleDrumConverter/internal/metrics"
)

// Metrics register with the default Prometheus registry, so the test binary
// must create them exactly once.
var testMetrics = metrics.NewMetrics()

func newTestServer(t *testing.T, b *batch.Batch, events *batch.EventBus) *httptest.Server {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := config.Default()

	h := NewHTTPServer(cfg.HTTP, logger, cfg, b, events, testMetrics)

	ts := httptest.NewServer(h.server.Handler)
	t.Cleanup(ts.Close)
	return ts
}

func writeTestWAV(t *testing.T, path string) {
	t.Helper()

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create %s: %v", path, err)
	}
	enc := wav.NewEncoder(f, 44100, 16, 1, 1)
	buf := &audio.IntBuffer{
		Format: &audio.Format{NumChannels: 1, SampleRate: 44100},
		Data:   make([]int, 64),
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("Failed to write samples: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("Failed to close encoder: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("Failed to close file: %v", err)
	}
}

func getJSON(t *testing.T, url string, out interface{}) int {
	t.Helper()

	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s failed: %v", url, err)
	}
	defer resp.Body.Close()

	if out != nil && resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("Failed to decode response from %s: %v", url, err)
		}
	}
	return resp.StatusCode
}

func TestHandleHealth(t *testing.T) {
	b := batch.New(10, 100<<20)
	ts := newTestServer(t, b, batch.NewEventBus(100))

	var health map[string]interface{}
	status := getJSON(t, ts.URL+"/health", &health)
	if status != http.StatusOK {
		t.Fatalf("Expected 200, got %d", status)
	}

	if health["status"] != "healthy" {
		t.Errorf("Expected status healthy, got %v", health["status"])
	}
	if _, ok := health["batch"]; !ok {
		t.Error("Expected batch summary in health response")
	}
}

func TestHandleJobs(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "kick.wav")
	writeTestWAV(t, src)

	b := batch.New(10, 100<<20)
	b.Add([]string{src})

	ts := newTestServer(t, b, batch.NewEventBus(100))

	var response struct {
		TotalJobs int              `json:"total_jobs"`
		Jobs      []batch.Snapshot `json:"jobs"`
	}
	status := getJSON(t, ts.URL+"/jobs", &response)
	if status != http.StatusOK {
		t.Fatalf("Expected 200, got %d", status)
	}

	if response.TotalJobs != 1 {
		t.Fatalf("Expected 1 job, got %d", response.TotalJobs)
	}
	if response.Jobs[0].SourcePath != src {
		t.Errorf("Expected source path %s, got %s", src, response.Jobs[0].SourcePath)
	}
	if response.Jobs[0].Status != batch.StatusPending {
		t.Errorf("Expected pending status, got %s", response.Jobs[0].Status)
	}
}

func TestHandleJobDetail(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "snare.wav")
	writeTestWAV(t, src)

	b := batch.New(10, 100<<20)
	report := b.Add([]string{src})
	if len(report.Added) != 1 {
		t.Fatalf("Expected 1 added job, got %d", len(report.Added))
	}
	id := report.Added[0].ID

	ts := newTestServer(t, b, batch.NewEventBus(100))

	var job batch.Snapshot
	status := getJSON(t, ts.URL+"/jobs/"+id, &job)
	if status != http.StatusOK {
		t.Fatalf("Expected 200, got %d", status)
	}
	if job.ID != id {
		t.Errorf("Expected job ID %s, got %s", id, job.ID)
	}

	if status := getJSON(t, ts.URL+"/jobs/no-such-id", nil); status != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown job, got %d", status)
	}
}

func TestHandleEvents(t *testing.T) {
	b := batch.New(10, 100<<20)
	events := batch.NewEventBus(100)

	job := batch.Snapshot{ID: "a", Status: batch.StatusPending}
	events.Publish(batch.Event{Type: batch.EventTypeStatus, Job: job})
	job.Status = batch.StatusConverting
	events.Publish(batch.Event{Type: batch.EventTypeStatus, Job: job})
	job.Status = batch.StatusCompleted
	events.Publish(batch.Event{Type: batch.EventTypeStatus, Job: job})

	ts := newTestServer(t, b, events)

	var response struct {
		LastSeq int64         `json:"last_seq"`
		Events  []batch.Event `json:"events"`
	}
	status := getJSON(t, ts.URL+"/events", &response)
	if status != http.StatusOK {
		t.Fatalf("Expected 200, got %d", status)
	}
	if len(response.Events) != 3 {
		t.Fatalf("Expected 3 events, got %d", len(response.Events))
	}
	if response.LastSeq != 3 {
		t.Errorf("Expected last_seq 3, got %d", response.LastSeq)
	}

	// Incremental fetch skips already seen events
	status = getJSON(t, ts.URL+"/events?since=2", &response)
	if status != http.StatusOK {
		t.Fatalf("Expected 200, got %d", status)
	}
	if len(response.Events) != 1 {
		t.Fatalf("Expected 1 event after seq 2, got %d", len(response.Events))
	}
	if response.Events[0].Job.Status != batch.StatusCompleted {
		t.Errorf("Expected completed event, got %s", response.Events[0].Job.Status)
	}

	if status := getJSON(t, ts.URL+"/events?since=bogus", nil); status != http.StatusBadRequest {
		t.Errorf("Expected 400 for invalid since, got %d", status)
	}
}

func TestHandleConfig(t *testing.T) {
	b := batch.New(10, 100<<20)
	ts := newTestServer(t, b, batch.NewEventBus(100))

	var cfg map[string]map[string]interface{}
	status := getJSON(t, ts.URL+"/config", &cfg)
	if status != http.StatusOK {
		t.Fatalf("Expected 200, got %d", status)
	}
	if cfg["audio"]["chunk_frames"] != float64(32768) {
		t.Errorf("Expected chunk_frames 32768, got %v", cfg["audio"]["chunk_frames"])
	}
	if cfg["batch"]["capacity"] != float64(50) {
		t.Errorf("Expected capacity 50, got %v", cfg["batch"]["capacity"])
	}
}

func TestMethodNotAllowed(t *testing.T) {
	b := batch.New(10, 100<<20)
	ts := newTestServer(t, b, batch.NewEventBus(100))

	resp, err := http.Post(ts.URL+"/jobs", "application/json", nil)
	if err != nil {
		t.Fatalf("POST failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405, got %d", resp.StatusCode)
	}
}
