package operations

import (
	"os"
	"sync"
	"time"
)

// Artifact kinds
const (
	ArtifactDashboard       = "dashboard"
	ArtifactEnrichedCSV     = "enriched_csv"
	ArtifactSummaryWorkbook = "summary_workbook"
)

// Artifact describes a file written by a step
type Artifact struct {
	Kind      string    `json:"kind"`
	Path      string    `json:"path"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
	CreatedBy string    `json:"created_by"`
}

// ArtifactManifest tracks the files produced during one run
type ArtifactManifest struct {
	mu sync.RWMutex

	OperationID string     `json:"operation_id"`
	Artifacts   []Artifact `json:"artifacts"`
}

// NewArtifactManifest creates an empty manifest for a run
func NewArtifactManifest(operationID string) *ArtifactManifest {
	return &ArtifactManifest{OperationID: operationID}
}

// Add records a written file. The size is read from disk when available.
func (m *ArtifactManifest) Add(kind, path, stepID string) Artifact {
	a := Artifact{Kind: kind, Path: path, CreatedAt: time.Now(), CreatedBy: stepID}
	if info, err := os.Stat(path); err == nil {
		a.Size = info.Size()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.Artifacts = append(m.Artifacts, a)
	return a
}

// Get returns the first artifact of the given kind
func (m *ArtifactManifest) Get(kind string) (Artifact, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, a := range m.Artifacts {
		if a.Kind == kind {
			return a, true
		}
	}
	return Artifact{}, false
}

// List returns a copy of all artifacts in the order they were written
func (m *ArtifactManifest) List() []Artifact {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Artifact, len(m.Artifacts))
	copy(out, m.Artifacts)
	return out
}
