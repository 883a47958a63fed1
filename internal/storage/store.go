package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/san-kum/particlefield/internal/field"
)

const (
	metadataFile = "metadata.json"
	framesFile   = "frames.csv"
)

var framesHeader = []string{"frame", "elapsed", "particles", "links", "mean_alpha"}

type Store struct {
	mu      sync.Mutex // serializes Save so concurrent sessions get distinct IDs
	baseDir string
	index   *Index
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// SetIndex makes Save record new sessions in idx as well.
func (s *Store) SetIndex(idx *Index) { s.index = idx }

// IndexPath is the conventional location of the index inside the store.
func (s *Store) IndexPath() string { return filepath.Join(s.baseDir, "index.db") }

// SessionMetadata describes one recorded session.
type SessionMetadata struct {
	ID        string             `json:"id"`
	Preset    string             `json:"preset"`
	Timestamp time.Time          `json:"timestamp"`
	Seed      int64              `json:"seed"`
	Width     int                `json:"width"`
	Height    int                `json:"height"`
	FPS       int                `json:"fps"`
	Frames    int                `json:"frames"`
	Metrics   map[string]float64 `json:"metrics"`
	Artifacts []string           `json:"artifacts,omitempty"`
	Options   field.Options      `json:"options"`
}

// FrameRecord is one row of frames.csv.
type FrameRecord struct {
	Frame     int     `json:"frame"`
	Elapsed   float64 `json:"elapsed"`
	Particles int     `json:"particles"`
	Links     int     `json:"links"`
	MeanAlpha float64 `json:"mean_alpha"`
}

// Dir returns the directory of a session.
func (s *Store) Dir(id string) string { return filepath.Join(s.baseDir, id) }

// Save writes a new session directory with its metadata, per-frame stats
// and any artifacts, keyed by file name. ID and Timestamp are filled in.
func (s *Store) Save(meta SessionMetadata, frames []FrameRecord, artifacts map[string][]byte) (string, error) {
	names := make([]string, 0, len(artifacts))
	for name := range artifacts {
		if filepath.Base(name) != name {
			return "", fmt.Errorf("storage: artifact name %q must not contain a path", name)
		}
		names = append(names, name)
	}
	sort.Strings(names)

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	base := fmt.Sprintf("%s_%d", meta.Preset, now.Unix())
	runID := base
	for n := 2; ; n++ {
		if _, err := os.Stat(s.Dir(runID)); os.IsNotExist(err) {
			break
		}
		runID = fmt.Sprintf("%s_%d", base, n)
	}

	meta.ID = runID
	meta.Timestamp = now
	meta.Frames = len(frames)
	meta.Artifacts = names

	runDir := s.Dir(runID)
	if err := writeSession(runDir, meta, frames, artifacts); err != nil {
		os.RemoveAll(runDir)
		return "", err
	}
	if s.index != nil {
		if err := s.index.Add(meta); err != nil {
			return runID, fmt.Errorf("storage: index %s: %w", runID, err)
		}
	}
	return runID, nil
}

func writeSession(dir string, meta SessionMetadata, frames []FrameRecord, artifacts map[string][]byte) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	for name, data := range artifacts {
		if err := os.WriteFile(filepath.Join(dir, name), data, 0644); err != nil {
			return err
		}
	}
	if err := writeJSON(filepath.Join(dir, metadataFile), meta); err != nil {
		return err
	}
	return writeFrames(filepath.Join(dir, framesFile), frames)
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeFrames(path string, frames []FrameRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(framesHeader); err != nil {
		return err
	}
	for _, fr := range frames {
		row := []string{
			strconv.Itoa(fr.Frame),
			strconv.FormatFloat(fr.Elapsed, 'f', 6, 64),
			strconv.Itoa(fr.Particles),
			strconv.Itoa(fr.Links),
			strconv.FormatFloat(fr.MeanAlpha, 'f', 6, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// List returns stored sessions, newest first.
func (s *Store) List() ([]SessionMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []SessionMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]SessionMetadata, 0)
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
	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*SessionMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.Dir(runID), metadataFile))
	if err != nil {
		return nil, err
	}

	var meta SessionMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadFrames reads frames.csv back. Malformed rows are skipped.
func (s *Store) LoadFrames(runID string) ([]FrameRecord, error) {
	file, err := os.Open(filepath.Join(s.Dir(runID), framesFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []FrameRecord{}, nil
	}

	frames := make([]FrameRecord, 0, len(records)-1)
	for _, rec := range records[1:] {
		if len(rec) != len(framesHeader) {
			continue
		}
		var fr FrameRecord
		var errs [5]error
		fr.Frame, errs[0] = strconv.Atoi(rec[0])
		fr.Elapsed, errs[1] = strconv.ParseFloat(rec[1], 64)
		fr.Particles, errs[2] = strconv.Atoi(rec[2])
		fr.Links, errs[3] = strconv.Atoi(rec[3])
		fr.MeanAlpha, errs[4] = strconv.ParseFloat(rec[4], 64)
		if errs != [5]error{} {
			continue
		}
		frames = append(frames, fr)
	}
	return frames, nil
}
