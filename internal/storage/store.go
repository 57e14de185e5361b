package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/plan-systems/klog"

	"github.com/san-kum/spinsim/internal/experiment"
	"github.com/san-kum/spinsim/internal/spin"
)

// ErrRunNotFound is returned when no run with the requested ID exists.
var (
	ErrRunNotFound = errors.New("run not found")
	ErrInvalidName = errors.New("invalid run name")
)

const (
	metadataFile = "metadata.json"
	signalFile   = "signal.csv"
)

var signalHeader = []string{"tick", "magnetization", "smoothed", "temperature", "field", "energy", "trials", "accepted"}

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// RunConfig is the persisted view of a spin.Config.
type RunConfig struct {
	NumNodes              int     `json:"numNodes"`
	NeighborsCount        int     `json:"neighborsCount"`
	Coupling              float64 `json:"coupling"`
	Temperature           float64 `json:"temperature"`
	Field                 float64 `json:"field"`
	Ternary               bool    `json:"ternaryMode"`
	FluctuationIntervalMs int64   `json:"fluctuationIntervalMs"`
	TrialsPerTick         int     `json:"trialsPerTick"`
	Alpha                 float64 `json:"alpha"`
	HistoryCapacity       int     `json:"historyCapacity"`
	DriftStep             float64 `json:"driftStep"`
}

func runConfig(c spin.Config) RunConfig {
	return RunConfig{
		NumNodes:              c.NumNodes,
		NeighborsCount:        c.NeighborsCount,
		Coupling:              c.Coupling,
		Temperature:           c.Temperature,
		Field:                 c.Field,
		Ternary:               c.Ternary,
		FluctuationIntervalMs: c.FluctuationInterval.Milliseconds(),
		TrialsPerTick:         c.TrialsPerTick,
		Alpha:                 c.Alpha,
		HistoryCapacity:       c.HistoryCapacity,
		DriftStep:             c.DriftStep,
	}
}

type RunMetadata struct {
	ID              string             `json:"id"`
	Name            string             `json:"name"`
	Timestamp       time.Time          `json:"timestamp"`
	Seed            int64              `json:"seed"`
	Ticks           int                `json:"ticks"`
	FrameIntervalMs float64            `json:"frameIntervalMs"`
	Config          RunConfig          `json:"config"`
	Metrics         map[string]float64 `json:"metrics"`
}

// Duration is the virtual length of the run.
func (m *RunMetadata) Duration() time.Duration {
	return time.Duration(float64(m.Ticks) * m.FrameIntervalMs * float64(time.Millisecond))
}

// Save writes metadata.json and signal.csv under a fresh run directory and
// returns the run ID.
func (s *Store) Save(name string, result *experiment.Result) (string, error) {
	if !validID(name) {
		return "", errors.Wrapf(ErrInvalidName, "%q", name)
	}
	now := time.Now()
	runID, runDir, err := s.allocate(name, now)
	if err != nil {
		return "", err
	}

	ticks := len(result.Signals)
	frame := 0.0
	if ticks > 0 {
		frame = float64(result.Elapsed) / float64(ticks) / float64(time.Millisecond)
	}
	meta := RunMetadata{
		ID:              runID,
		Name:            name,
		Timestamp:       now,
		Seed:            result.Config.Seed,
		Ticks:           ticks,
		FrameIntervalMs: frame,
		Config:          runConfig(result.Config),
		Metrics:         result.Metrics,
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", errors.Wrapf(err, "save run %s", runID)
	}
	if err := writeSignals(filepath.Join(runDir, signalFile), result.Signals); err != nil {
		return "", errors.Wrapf(err, "save run %s", runID)
	}

	klog.Infof("storage: saved run %s (%d ticks)", runID, ticks)
	return runID, nil
}

// allocate reserves name_<unix>, adding a counter when that directory is
// already taken.
func (s *Store) allocate(name string, now time.Time) (string, string, error) {
	if err := s.Init(); err != nil {
		return "", "", errors.Wrap(err, "create store directory")
	}
	base := fmt.Sprintf("%s_%d", name, now.Unix())
	runID := base
	for i := 2; ; i++ {
		runDir := filepath.Join(s.baseDir, runID)
		err := os.Mkdir(runDir, 0755)
		if err == nil {
			return runID, runDir, nil
		}
		if !os.IsExist(err) {
			return "", "", errors.Wrapf(err, "create run directory %s", runID)
		}
		runID = fmt.Sprintf("%s_%d", base, i)
	}
}

func writeJSON(path string, v interface{}) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeSignals(path string, signals []spin.Signal) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(signalHeader); err != nil {
		return err
	}
	for _, sig := range signals {
		if err := w.Write(signalRow(sig)); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func signalRow(sig spin.Signal) []string {
	return []string{
		strconv.FormatUint(sig.Tick, 10),
		strconv.FormatFloat(sig.Magnetization, 'g', -1, 64),
		strconv.FormatFloat(sig.Smoothed, 'g', -1, 64),
		strconv.FormatFloat(sig.Temperature, 'g', -1, 64),
		strconv.FormatFloat(sig.Field, 'g', -1, 64),
		strconv.FormatFloat(sig.Energy, 'g', -1, 64),
		strconv.Itoa(sig.Trials),
		strconv.Itoa(sig.Accepted),
	}
}

// List returns every readable run, oldest first. Directories without valid
// metadata are skipped.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, errors.Wrap(err, "list runs")
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			klog.V(1).Infof("storage: skipping %s: %v", entry.Name(), err)
			continue
		}
		runs = append(runs, *meta)
	}

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

// validID reports whether v names a single entry directly under the store.
func validID(v string) bool {
	return v != "" && v != "." && v != ".." && !strings.ContainsAny(v, `/\`)
}

func (s *Store) runDir(runID string) (string, error) {
	if !validID(runID) {
		return "", errors.Wrapf(ErrRunNotFound, "invalid run id %q", runID)
	}
	return filepath.Join(s.baseDir, runID), nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	dir, err := s.runDir(runID)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(dir, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(ErrRunNotFound, "run %s", runID)
		}
		return nil, errors.Wrapf(err, "load run %s", runID)
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, errors.Wrapf(err, "decode metadata of run %s", runID)
	}
	return &meta, nil
}

// LoadSignals reads a run's signal.csv back into signals. Rows that fail to
// parse are skipped.
func (s *Store) LoadSignals(runID string) ([]spin.Signal, error) {
	dir, err := s.runDir(runID)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(filepath.Join(dir, signalFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(ErrRunNotFound, "signals of run %s", runID)
		}
		return nil, errors.Wrapf(err, "open signals of run %s", runID)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, errors.Wrapf(err, "read signals of run %s", runID)
	}
	if len(records) < 2 {
		return []spin.Signal{}, nil
	}

	signals := make([]spin.Signal, 0, len(records)-1)
	for _, rec := range records[1:] {
		sig, err := parseSignal(rec)
		if err != nil {
			continue
		}
		signals = append(signals, sig)
	}
	return signals, nil
}

func parseSignal(rec []string) (spin.Signal, error) {
	var sig spin.Signal
	if len(rec) != len(signalHeader) {
		return sig, errors.Errorf("expected %d fields, got %d", len(signalHeader), len(rec))
	}
	var err error
	if sig.Tick, err = strconv.ParseUint(rec[0], 10, 64); err != nil {
		return sig, err
	}
	floats := []*float64{&sig.Magnetization, &sig.Smoothed, &sig.Temperature, &sig.Field, &sig.Energy}
	for i, dst := range floats {
		if *dst, err = strconv.ParseFloat(rec[i+1], 64); err != nil {
			return sig, err
		}
	}
	if sig.Trials, err = strconv.Atoi(rec[6]); err != nil {
		return sig, err
	}
	if sig.Accepted, err = strconv.Atoi(rec[7]); err != nil {
		return sig, err
	}
	return sig, nil
}
