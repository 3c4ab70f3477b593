package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/kepler/internal/kepler"
	"github.com/san-kum/kepler/internal/orbit"
)

const (
	metadataFile   = "metadata.json"
	trajectoryFile = "trajectory.csv"
)

var trajectoryHeader = []string{"t", "x", "y", "ke", "pe", "te"}

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Timestamp time.Time          `json:"timestamp"`
	Method    string             `json:"method"`
	Elements  kepler.Elements    `json:"elements"`
	Period    float64            `json:"period"`
	Step      float64            `json:"step"`
	TEnd      float64            `json:"tend"`
	Samples   int                `json:"samples"`
	Metrics   map[string]float64 `json:"metrics"`
}

type runMetadataFields RunMetadata

// MarshalJSON encodes Metrics through Float so that a singular run
// still serializes.
func (m RunMetadata) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		runMetadataFields
		Metrics map[string]Float `json:"metrics"`
	}{runMetadataFields(m), toFloatMap(m.Metrics)})
}

func (m *RunMetadata) UnmarshalJSON(b []byte) error {
	aux := struct {
		*runMetadataFields
		Metrics map[string]Float `json:"metrics"`
	}{runMetadataFields: (*runMetadataFields)(m)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	m.Metrics = fromFloatMap(aux.Metrics)
	return nil
}

// Save writes the run under a fresh id and returns it. Method, step,
// sample count and metrics are taken from the trajectory.
func (s *Store) Save(meta RunMetadata, tr *orbit.Trajectory) (string, error) {
	if meta.Name == "" {
		meta.Name = "orbit"
	}
	meta.ID = fmt.Sprintf("%s_%s", meta.Name, uuid.NewString()[:8])
	meta.Timestamp = time.Now()
	meta.Method = tr.Method
	meta.Step = tr.Step
	meta.Samples = tr.Len()
	meta.Metrics = tr.Metrics

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	if err := writeRun(runDir, meta, tr); err != nil {
		os.RemoveAll(runDir)
		return "", err
	}
	return meta.ID, nil
}

func writeRun(runDir string, meta RunMetadata, tr *orbit.Trajectory) error {
	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}
	if err := writeTrajectory(filepath.Join(runDir, trajectoryFile), tr); err != nil {
		return fmt.Errorf("write trajectory: %w", err)
	}
	return nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return err
	}
	return f.Close()
}

func writeTrajectory(path string, tr *orbit.Trajectory) error {
	ts, xs, ys, kes, pes, tes := tr.Columns()
	for _, col := range [][]float64{xs, ys, kes, pes, tes} {
		if len(col) != len(ts) {
			return fmt.Errorf("column has %d samples, want %d", len(col), len(ts))
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(trajectoryHeader); err != nil {
		return err
	}

	row := make([]string, len(trajectoryHeader))
	for i := range ts {
		for j, v := range []float64{ts[i], xs[i], ys[i], kes[i], pes[i], tes[i]} {
			row[j] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}

// List returns stored runs, newest first. Directories without readable
// metadata are skipped.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("decode metadata for %s: %w", runID, err)
	}

	return &meta, nil
}

// LoadTrajectory reads a run back into a Trajectory. Final is not stored and
// stays nil.
func (s *Store) LoadTrajectory(runID string) (*orbit.Trajectory, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(filepath.Join(s.baseDir, runID, trajectoryFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = len(trajectoryHeader)

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read trajectory for %s: %w", runID, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("trajectory for %s has no header", runID)
	}
	records = records[1:]

	n := len(records)
	tr := &orbit.Trajectory{
		Method:  meta.Method,
		Mass:    meta.Elements.M,
		Step:    meta.Step,
		Times:   make([]float64, n),
		X:       make([]float64, n),
		Y:       make([]float64, n),
		KE:      make([]float64, n),
		PE:      make([]float64, n),
		TE:      make([]float64, n),
		Metrics: meta.Metrics,
	}
	cols := [][]float64{tr.Times, tr.X, tr.Y, tr.KE, tr.PE, tr.TE}

	for i, record := range records {
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("trajectory %s row %d column %s: %w", runID, i+1, trajectoryHeader[j], err)
			}
			cols[j][i] = v
		}
	}

	return tr, nil
}
