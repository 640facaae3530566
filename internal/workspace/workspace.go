package workspace

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// Workspace is the per-job scratch directory. Every downloaded file and
// intermediate artifact for a job lives under it, so a single Release
// call reclaims everything no matter how far the pipeline got.
type Workspace struct {
	jobID string
	dir   string
}

// Open creates an isolated scratch directory for the job under root.
func Open(root, jobID string) (*Workspace, error) {
	dir := filepath.Join(root, jobID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create workspace %s: %w", dir, err)
	}
	return &Workspace{jobID: jobID, dir: dir}, nil
}

// Dir returns the workspace directory.
func (w *Workspace) Dir() string {
	return w.dir
}

// Path returns the location for a named artifact inside the workspace.
func (w *Workspace) Path(name string) string {
	return filepath.Join(w.dir, name)
}

// Adopt moves an externally written file (an uploaded narration spill)
// into the workspace so it is removed together with everything else.
func (w *Workspace) Adopt(path string) (string, error) {
	dest := filepath.Join(w.dir, filepath.Base(path))
	if err := os.Rename(path, dest); err != nil {
		return "", fmt.Errorf("failed to adopt %s into workspace: %w", path, err)
	}
	return dest, nil
}

// Release removes the workspace directory and everything under it.
// A cleanup failure is logged and swallowed — it must never replace
// the job's own result.
func (w *Workspace) Release() {
	if err := os.RemoveAll(w.dir); err != nil {
		log.Printf("[Workspace] Warning: failed to remove %s for job %s: %v", w.dir, w.jobID, err)
	}
}
