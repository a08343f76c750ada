package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/mrilab/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
)

var (
	ErrRunNotFound = errors.New("storage: run not found")
	ErrCorruptRun  = errors.New("storage: corrupt run data")
)

const (
	metadataFile = "metadata.json"
	seriesFile   = "series.csv"
	trailFile    = "trail.csv"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir() string { return s.baseDir }

type RunMetadata struct {
	ID        string             `json:"id"`
	Demo      string             `json:"demo"`
	Mode      string             `json:"mode,omitempty"`
	Timestamp time.Time          `json:"timestamp"`
	Steps     int                `json:"steps"`
	Params    map[string]float64 `json:"params,omitempty"`
	Timing    dynamo.Timing      `json:"timing"`
	Channels  []string           `json:"channels"`
	Metrics   map[string]float64 `json:"metrics"`
}

// Save writes a run directory named after the demo and the current time.
func (s *Store) Save(result *dynamo.Result) (string, error) {
	now := time.Now()
	runID, runDir, err := s.makeRunDir(result.Demo, now)
	if err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Demo:      result.Demo,
		Mode:      result.Mode,
		Timestamp: now,
		Steps:     result.StepsTaken,
		Params:    result.Params,
		Timing:    result.Timing,
		Channels:  result.Channels,
		Metrics:   result.Metrics,
	}

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, seriesFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()
	if err := WriteCSV(csvFile, result); err != nil {
		return "", err
	}

	if len(result.Trail) == 0 {
		return runID, nil
	}
	trailOut, err := os.Create(filepath.Join(runDir, trailFile))
	if err != nil {
		return "", err
	}
	defer trailOut.Close()
	if err := writeTrail(trailOut, result.Trail); err != nil {
		return "", err
	}

	return runID, nil
}

// makeRunDir creates <demo>_<unix>, adding a counter when two runs land in
// the same second.
func (s *Store) makeRunDir(demo string, now time.Time) (string, string, error) {
	if err := s.Init(); err != nil {
		return "", "", err
	}
	base := fmt.Sprintf("%s_%d", demo, now.Unix())
	for i := 0; ; i++ {
		runID := base
		if i > 0 {
			runID = fmt.Sprintf("%s_%d", base, i)
		}
		runDir := filepath.Join(s.baseDir, runID)
		err := os.Mkdir(runDir, 0755)
		if err == nil {
			return runID, runDir, nil
		}
		if !os.IsExist(err) {
			return "", "", err
		}
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// WriteCSV writes a time column followed by one column per channel.
func WriteCSV(out io.Writer, result *dynamo.Result) error {
	w := csv.NewWriter(out)

	header := append([]string{"time"}, result.Channels...)
	if err := w.Write(header); err != nil {
		return err
	}

	for i, t := range result.Times {
		row := []string{formatFloat(t)}
		for _, ch := range result.Channels {
			vals := result.Series[ch]
			if i < len(vals) {
				row = append(row, formatFloat(vals[i]))
			} else {
				row = append(row, "0")
			}
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func writeTrail(out io.Writer, trail []r3.Vec) error {
	w := csv.NewWriter(out)
	if err := w.Write([]string{"x", "y", "z"}); err != nil {
		return err
	}
	for _, p := range trail {
		if err := w.Write([]string{formatFloat(p.X), formatFloat(p.Y), formatFloat(p.Z)}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// List returns every readable run, oldest first.
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

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("decode %s: %w", runID, err)
	}
	return &meta, nil
}

func readRecords(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	return r.ReadAll()
}

// LoadSeries reads series.csv back into times and per-channel values.
func (s *Store) LoadSeries(runID string) ([]float64, map[string][]float64, error) {
	records, err := readRecords(filepath.Join(s.baseDir, runID, seriesFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, nil, err
	}

	series := make(map[string][]float64)
	if len(records) < 1 {
		return []float64{}, series, nil
	}
	header := records[0]
	for _, ch := range header[1:] {
		series[ch] = []float64{}
	}

	times := make([]float64, 0, len(records)-1)
	for _, record := range records[1:] {
		if len(record) == 0 {
			continue
		}
		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %s %s: time %q: %v", ErrCorruptRun, runID, seriesFile, record[0], err)
		}
		times = append(times, t)
		for j := 1; j < len(header); j++ {
			v := 0.0
			if j < len(record) {
				if v, err = strconv.ParseFloat(record[j], 64); err != nil {
					return nil, nil, fmt.Errorf("%w: %s %s: %s %q: %v", ErrCorruptRun, runID, seriesFile, header[j], record[j], err)
				}
			}
			series[header[j]] = append(series[header[j]], v)
		}
	}
	return times, series, nil
}

// LoadTrail reads the recorded magnetization trail. Runs without a trail
// return an empty slice.
func (s *Store) LoadTrail(runID string) ([]r3.Vec, error) {
	records, err := readRecords(filepath.Join(s.baseDir, runID, trailFile))
	if err != nil {
		if os.IsNotExist(err) {
			return []r3.Vec{}, nil
		}
		return nil, err
	}
	if len(records) < 1 {
		return []r3.Vec{}, nil
	}
	trail := make([]r3.Vec, 0, len(records)-1)
	for _, record := range records[1:] {
		if len(record) < 3 {
			continue
		}
		var xyz [3]float64
		for k := range xyz {
			if xyz[k], err = strconv.ParseFloat(record[k], 64); err != nil {
				return nil, fmt.Errorf("%w: %s %s: %q: %v", ErrCorruptRun, runID, trailFile, record[k], err)
			}
		}
		trail = append(trail, r3.Vec{X: xyz[0], Y: xyz[1], Z: xyz[2]})
	}
	return trail, nil
}

// LoadResult rebuilds a Result from a stored run. The final frame is not
// persisted.
func (s *Store) LoadResult(runID string) (*dynamo.Result, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}
	times, series, err := s.LoadSeries(runID)
	if err != nil {
		return nil, err
	}
	trail, err := s.LoadTrail(runID)
	if err != nil {
		return nil, err
	}
	return &dynamo.Result{
		Demo:       meta.Demo,
		Mode:       meta.Mode,
		Params:     meta.Params,
		Timing:     meta.Timing,
		Channels:   meta.Channels,
		Times:      times,
		Series:     series,
		Trail:      trail,
		Metrics:    meta.Metrics,
		StepsTaken: meta.Steps,
	}, nil
}
