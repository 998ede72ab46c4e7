package file

import (
	"context"
	"fmt"
	"path/filepath"

	"agencysite/internal/database/jsonfile"
	"agencysite/internal/model"
	"agencysite/internal/repository"
)

// ApplicationLog appends applications to a JSON-Lines file.
type ApplicationLog struct {
	path string
}

// NewApplicationLog stores applications in <dataDir>/applications.jsonl.
func NewApplicationLog(dataDir string) *ApplicationLog {
	return &ApplicationLog{path: filepath.Join(dataDir, "applications.jsonl")}
}

var _ repository.ApplicationLog = (*ApplicationLog)(nil)

// Path returns the backing file.
func (l *ApplicationLog) Path() string { return l.path }

// Append writes app as a new line.
func (l *ApplicationLog) Append(_ context.Context, app model.Application) error {
	if err := jsonfile.AppendLine(l.path, app); err != nil {
		return fmt.Errorf("append application: %w", err)
	}
	return nil
}

// List returns all readable lines in file order.
func (l *ApplicationLog) List(_ context.Context) ([]model.Application, error) {
	return jsonfile.ReadLines[model.Application](l.path), nil
}
