package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/google/renameio/v2"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const indent = "    "

// Writer writes documents as {dir}/{name}.json, replacing any previous file
// in one rename so readers never observe a partial document.
type Writer struct {
	dir    string
	logger *zap.SugaredLogger
}

// NewWriter creates a writer rooted at dir, creating the directory if needed
func NewWriter(dir string, logger *zap.SugaredLogger) (*Writer, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("error creating output directory %s: %w", dir, err)
	}
	return &Writer{dir: dir, logger: logger}, nil
}

// Path returns the file path used for a document name
func (w *Writer) Path(name string) string {
	return filepath.Join(w.dir, name+".json")
}

// Encode renders a document the way it is written to disk
func Encode(doc any) ([]byte, error) {
	return json.MarshalIndent(doc, "", indent)
}

// Write encodes doc fully in memory and atomically replaces {name}.json
func (w *Writer) Write(name string, doc any) error {
	data, err := Encode(doc)
	if err != nil {
		return fmt.Errorf("error encoding %s: %w", name, err)
	}

	target := w.Path(name)
	if err := renameio.WriteFile(target, data, 0o644, renameio.WithTempDir(w.dir)); err != nil {
		return fmt.Errorf("error replacing %s: %w", target, err)
	}

	if w.logger != nil {
		w.logger.Infof("Saved %s (%s)", target, humanize.Bytes(uint64(len(data))))
	}
	return nil
}

// WriteAll writes every document, continuing past failures. The returned
// error combines every failed write; names lists the files written.
func (w *Writer) WriteAll(docs map[string]any) (names []string, err error) {
	keys := make([]string, 0, len(docs))
	for name := range docs {
		keys = append(keys, name)
	}
	sort.Strings(keys)

	for _, name := range keys {
		if werr := w.Write(name, docs[name]); werr != nil {
			if w.logger != nil {
				w.logger.Errorf("error saving %s: %v", name, werr)
			}
			err = multierr.Append(err, werr)
			continue
		}
		names = append(names, name)
	}
	return names, err
}
