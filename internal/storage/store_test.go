package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/san-kum/spinsim/internal/experiment"
	"github.com/san-kum/spinsim/internal/spin"
)

func sampleResult() *experiment.Result {
	cfg := spin.DefaultConfig()
	cfg.Seed = 42
	return &experiment.Result{
		Config: cfg,
		Signals: []spin.Signal{
			{Tick: 1, Magnetization: 0.5, Smoothed: 0.005, Temperature: 1, Field: 0, Energy: -3, Trials: 100, Accepted: 40},
			{Tick: 2, Magnetization: -0.25, Smoothed: 0.0024, Temperature: 1.03, Field: -0.02, Energy: 1.5, Trials: 100, Accepted: 37},
		},
		Metrics: map[string]float64{"acceptance_rate": 0.385},
		Elapsed: 2 * experiment.DefaultFrameInterval,
	}
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	result := sampleResult()
	runID, err := st.Save("ordered", result)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if !strings.HasPrefix(runID, "ordered_") {
		t.Errorf("unexpected run id %q", runID)
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Name != "ordered" {
		t.Errorf("expected name 'ordered', got '%s'", meta.Name)
	}
	if meta.Seed != 42 {
		t.Errorf("expected seed 42, got %d", meta.Seed)
	}
	if meta.Ticks != 2 {
		t.Errorf("expected 2 ticks, got %d", meta.Ticks)
	}
	if meta.Config.NumNodes != spin.DefaultNumNodes || meta.Config.FluctuationIntervalMs != 500 {
		t.Errorf("config not persisted: %+v", meta.Config)
	}
	if meta.Metrics["acceptance_rate"] != 0.385 {
		t.Errorf("expected acceptance 0.385, got %f", meta.Metrics["acceptance_rate"])
	}
	if d := meta.Duration(); d < 33*time.Millisecond || d > 34*time.Millisecond {
		t.Errorf("unexpected duration %v", d)
	}

	signals, err := st.LoadSignals(runID)
	if err != nil {
		t.Fatalf("load signals failed: %v", err)
	}
	if len(signals) != len(result.Signals) {
		t.Fatalf("expected %d signals, got %d", len(result.Signals), len(signals))
	}
	for i := range signals {
		if signals[i] != result.Signals[i] {
			t.Errorf("signal %d: expected %+v, got %+v", i, result.Signals[i], signals[i])
		}
	}
}

func TestStoreList(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "runs"))

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	first, err := st.Save("test", sampleResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	second, err := st.Save("test", sampleResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if first == second {
		t.Fatalf("two saves share run id %q", first)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Errorf("expected 2 runs, got %d", len(runs))
	}
}

func TestStoreFileStructure(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	runID, err := st.Save("test", sampleResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	runDir := filepath.Join(tmpDir, runID)
	for _, name := range []string{"metadata.json", "signal.csv"} {
		if _, err := os.Stat(filepath.Join(runDir, name)); os.IsNotExist(err) {
			t.Errorf("%s not created", name)
		}
	}

	data, err := os.ReadFile(filepath.Join(runDir, "signal.csv"))
	if err != nil {
		t.Fatal(err)
	}
	header := strings.SplitN(string(data), "\n", 2)[0]
	if header != "tick,magnetization,smoothed,temperature,field,energy,trials,accepted" {
		t.Errorf("unexpected header %q", header)
	}
}

func TestStoreRunNotFound(t *testing.T) {
	st := New(t.TempDir())
	for _, id := range []string{"missing_1", "../escape", ""} {
		if _, err := st.Load(id); !errors.Is(err, ErrRunNotFound) {
			t.Errorf("Load(%q): expected ErrRunNotFound, got %v", id, err)
		}
		if _, err := st.LoadSignals(id); !errors.Is(err, ErrRunNotFound) {
			t.Errorf("LoadSignals(%q): expected ErrRunNotFound, got %v", id, err)
		}
	}
}

func TestSaveRejectsUnsafeNames(t *testing.T) {
	root := t.TempDir()
	base := filepath.Join(root, "store")
	st := New(base)
	for _, name := range []string{"../escaped", "a/b", `a\b`, "..", ".", ""} {
		if _, err := st.Save(name, sampleResult()); !errors.Is(err, ErrInvalidName) {
			t.Errorf("Save(%q): expected ErrInvalidName, got %v", name, err)
		}
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if e.Name() != "store" {
			t.Errorf("unexpected entry %q outside the store", e.Name())
		}
	}
	runs, err := st.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}
}

func TestListSkipsBrokenRuns(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)
	if _, err := st.Save("good", sampleResult()); err != nil {
		t.Fatal(err)
	}
	broken := filepath.Join(tmpDir, "broken_1")
	if err := os.Mkdir(broken, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(broken, "metadata.json"), []byte("{"), 0644); err != nil {
		t.Fatal(err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 1 || runs[0].Name != "good" {
		t.Errorf("expected only the good run, got %+v", runs)
	}
}

func TestExport(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)
	result := sampleResult()
	runID, err := st.Save("test", result)
	if err != nil {
		t.Fatal(err)
	}
	meta, err := st.Load(runID)
	if err != nil {
		t.Fatal(err)
	}

	jsonPath := filepath.Join(tmpDir, "out.json")
	if err := ExportJSON(jsonPath, meta, result.Signals); err != nil {
		t.Fatalf("export json: %v", err)
	}
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`"run"`, `"signals"`, `"magnetization": -0.25`, runID} {
		if !strings.Contains(string(data), want) {
			t.Errorf("json export missing %s", want)
		}
	}

	csvPath := filepath.Join(tmpDir, "out.csv")
	if err := ExportCSV(csvPath, result.Signals); err != nil {
		t.Fatalf("export csv: %v", err)
	}
	data, err = os.ReadFile(csvPath)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Errorf("expected header plus 2 rows, got %d lines", len(lines))
	}
	if lines[1] != "1,0.5,0.005,1,0,-3,100,40" {
		t.Errorf("unexpected first row %q", lines[1])
	}
}
