package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/KaramelBytes/ecoreport/internal/report"
	"github.com/KaramelBytes/ecoreport/internal/utils"
	"github.com/google/uuid"
)

// Manifest is the record of one extraction run persisted next to its outputs.
type Manifest struct {
	ID         string      `json:"id"`
	Command    string      `json:"command"`
	Format     string      `json:"format"`
	OutputDir  string      `json:"output_dir"`
	Documents  []*Document `json:"documents"`
	StartedAt  time.Time   `json:"started_at"`
	FinishedAt time.Time   `json:"finished_at,omitempty"`

	mu sync.Mutex
}

// New constructs an in-memory manifest. Call Save() to persist.
func New(command, format, outputDir string) *Manifest {
	return &Manifest{
		ID:        uuid.NewString(),
		Command:   command,
		Format:    format,
		OutputDir: outputDir,
		Documents: []*Document{},
		StartedAt: time.Now(),
	}
}

// Load reads a manifest file.
func Load(path string) (*Manifest, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("manifest not found at %s: %w", path, err)
		}
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	return &m, nil
}

// FileName is the manifest's file name inside OutputDir.
func (m *Manifest) FileName() string {
	return "ecoreport-run-" + m.ID[:8] + ".json"
}

// Path is where Save writes the manifest.
func (m *Manifest) Path() string { return filepath.Join(m.OutputDir, m.FileName()) }

// Add records a processed input. Safe for concurrent use.
func (m *Manifest) Add(item report.BatchItem) *Document {
	d := newDocument(item)
	m.mu.Lock()
	m.Documents = append(m.Documents, d)
	m.mu.Unlock()
	return d
}

// Counts returns the number of succeeded and failed documents.
func (m *Manifest) Counts() (ok, failed int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.Documents {
		if d.Status == StatusFailed {
			failed++
		} else {
			ok++
		}
	}
	return ok, failed
}

// Save writes the manifest using atomic write and stamps FinishedAt.
func (m *Manifest) Save() error {
	if m.OutputDir == "" {
		return errors.New("manifest output directory not set")
	}
	if err := utils.EnsureDir(m.OutputDir); err != nil {
		return fmt.Errorf("ensure dir: %w", err)
	}
	m.mu.Lock()
	m.FinishedAt = time.Now()
	data, err := utils.PrettyJSON(m)
	m.mu.Unlock()
	if err != nil {
		return err
	}
	return utils.SafeWriteFile(m.Path(), data)
}
