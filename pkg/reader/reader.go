// Package reader opens a BI project on disk and normalizes its model
// description into a RawModel, regardless of whether the project is a
// packaged .pbix archive or a directory-based PBIP/TMDL project.
package reader

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/cloudbadal007/powerbi-ontology-extractor/pkg/apperrors"
	"github.com/cloudbadal007/powerbi-ontology-extractor/pkg/models"
)

// Source is a resolved BI project representation. The concrete variant
// (archive vs directory project) is decided once, at Open time. Close
// releases any scratch resources the source owns; it is safe to call more
// than once and never deletes caller-owned files.
type Source interface {
	// ToRawModel locates and parses the embedded model description and
	// normalizes it into a RawModel.
	ToRawModel() (*models.RawModel, error)
	io.Closer
}

// Options configures source resolution.
type Options struct {
	// ScratchDir is the root directory for archive extraction scratch
	// areas. Empty means the OS temp directory.
	ScratchDir string
}

// Open inspects path and resolves the concrete source variant:
//   - a directory is a PBIP/TMDL project root;
//   - a .pbip descriptor file marks its parent directory as the project root;
//   - anything else is treated as a packaged archive.
//
// Returns ErrNotFound if the path does not exist.
func Open(path string, opts Options, logger *zap.Logger) (Source, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("power bi file %q: %w", path, apperrors.ErrNotFound)
	}

	if info.IsDir() {
		return newProjectSource(path, logger), nil
	}
	if strings.EqualFold(filepath.Ext(path), ".pbip") {
		return newProjectSource(filepath.Dir(path), logger), nil
	}
	return newArchiveSource(path, opts.ScratchDir, logger), nil
}
