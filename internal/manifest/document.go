package manifest

import (
	"path/filepath"
	"time"

	"github.com/KaramelBytes/ecoreport/internal/report"
	"github.com/google/uuid"
)

// Document statuses.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// Document is the outcome of one input file within a run.
type Document struct {
	ID          string    `json:"id"`
	Path        string    `json:"path"`
	Name        string    `json:"name"`
	Tipo        string    `json:"tipo,omitempty"`
	Strategy    string    `json:"strategy,omitempty"`
	Status      string    `json:"status"`
	Output      string    `json:"output,omitempty"`
	Error       string    `json:"error,omitempty"`
	Warnings    []string  `json:"warnings,omitempty"`
	ProcessedAt time.Time `json:"processed_at"`
}

func newDocument(item report.BatchItem) *Document {
	d := &Document{
		Path:        item.Path,
		Name:        filepath.Base(item.Path),
		Status:      StatusOK,
		Output:      item.Output,
		ProcessedAt: time.Now(),
	}
	if res := item.Result; res != nil {
		d.Tipo = string(res.Tipo)
		if res.Measurements != nil {
			d.Strategy = res.Strategy.String()
		}
		d.Warnings = append(d.Warnings, res.Warnings...)
	}
	if item.Err != nil {
		d.Status = StatusFailed
		d.Error = item.Err.Error()
	}
	d.ID = documentID(item.Path)
	return d
}

// documentID is stable for a given file so runs over the same folder can be
// compared.
func documentID(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("file://"+filepath.ToSlash(path))).String()
}
