// Package artifact serializes the dataset to its published form.
package artifact

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/starlist/starlist/internal/app"
)

// Writer persists datasets as a JSON document at a fixed path.
//
// The write is atomic at dataset granularity: the document is staged in a
// temp file in the target directory and renamed into place, so consumers
// never observe a partial artifact.
type Writer struct {
	path string
}

var _ app.ArtifactWriter = &Writer{}

// NewWriter creates new Writer instance.
func NewWriter(path string) *Writer {
	return &Writer{path: path}
}

// Write serializes d and atomically replaces the artifact file.
func (w *Writer) Write(d app.Dataset) error {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling dataset: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(w.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(w.path)+".tmp*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), w.path); err != nil {
		return fmt.Errorf("replacing artifact: %w", err)
	}

	return nil
}

// Read loads a previously written artifact. Used by round-trip tests and
// handy for ad-hoc inspection.
func Read(path string) (app.Dataset, error) {
	var d app.Dataset
	data, err := os.ReadFile(path)
	if err != nil {
		return d, fmt.Errorf("reading artifact: %w", err)
	}
	if err := json.Unmarshal(data, &d); err != nil {
		return d, fmt.Errorf("unmarshalling artifact: %w", err)
	}

	return d, nil
}
