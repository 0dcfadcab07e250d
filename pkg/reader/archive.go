package reader

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/cloudbadal007/powerbi-ontology-extractor/pkg/apperrors"
	"github.com/cloudbadal007/powerbi-ontology-extractor/pkg/models"
)

// modelCandidatePaths are probed in order inside an extracted archive before
// falling back to a recursive search for any .bim file.
var modelCandidatePaths = []string{
	filepath.Join("DataModel", "model.bim"),
	"model.bim",
	"DataModelSchema",
}

// archiveSource reads a packaged .pbix archive. The archive is a ZIP
// container holding the semantic model as JSON (DataModel/model.bim).
//
// The scratch extraction area is exclusively owned by this source: created
// on first use, removed exactly once by Close on every exit path.
type archiveSource struct {
	path       string
	scratchDir string
	scratch    string
	logger     *zap.Logger
}

func newArchiveSource(path, scratchDir string, logger *zap.Logger) *archiveSource {
	return &archiveSource{
		path:       path,
		scratchDir: scratchDir,
		logger:     logger.Named("pbix-reader"),
	}
}

var _ Source = (*archiveSource)(nil)

// ToRawModel unpacks the archive, locates the model description and parses
// it. Fails with ErrInvalidFormat if the file is not a valid ZIP container
// or the model description is not well-formed JSON, and with ErrNotFound if
// the archive carries no model description at all.
func (s *archiveSource) ToRawModel() (*models.RawModel, error) {
	dir, err := s.extract()
	if err != nil {
		return nil, err
	}

	modelPath, err := s.locateModelFile(dir)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(modelPath)
	if err != nil {
		return nil, fmt.Errorf("read model description: %w", err)
	}

	raw, err := decodeBIM(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(modelPath), err)
	}
	if raw.Name == "" {
		raw.Name = strings.TrimSuffix(filepath.Base(s.path), filepath.Ext(s.path))
	}

	s.logger.Info("read model description from archive",
		zap.String("archive", s.path),
		zap.String("model", modelPath),
		zap.Int("tables", len(raw.Tables)),
		zap.Int("relationships", len(raw.Relationships)))
	return raw, nil
}

// extract unpacks the archive into a fresh scratch directory. Subsequent
// calls reuse the same directory.
func (s *archiveSource) extract() (string, error) {
	if s.scratch != "" {
		return s.scratch, nil
	}

	zr, err := zip.OpenReader(s.path)
	if err != nil {
		return "", fmt.Errorf("open archive %q: %w", s.path, apperrors.ErrInvalidFormat)
	}
	defer zr.Close()

	dir, err := os.MkdirTemp(s.scratchDir, "pbix_extract_")
	if err != nil {
		return "", fmt.Errorf("create scratch directory: %w", err)
	}

	for _, f := range zr.File {
		if err := extractEntry(dir, f); err != nil {
			// Scratch is half-populated; remove it now since Close may
			// never be reached by callers that bail on this error.
			if rmErr := os.RemoveAll(dir); rmErr != nil {
				s.logger.Warn("failed to clean up scratch directory", zap.Error(rmErr))
			}
			return "", err
		}
	}

	s.scratch = dir
	s.logger.Debug("extracted archive", zap.String("scratch", dir))
	return dir, nil
}

// extractEntry writes one archive entry under dir, rejecting entries whose
// cleaned path would escape the scratch directory.
func extractEntry(dir string, f *zip.File) error {
	target := filepath.Join(dir, filepath.FromSlash(f.Name))
	if !strings.HasPrefix(target, filepath.Clean(dir)+string(os.PathSeparator)) {
		return fmt.Errorf("archive entry %q escapes extraction directory: %w", f.Name, apperrors.ErrInvalidFormat)
	}

	if f.FileInfo().IsDir() {
		return os.MkdirAll(target, 0o755)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create directory for %q: %w", f.Name, err)
	}

	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("open archive entry %q: %w", f.Name, apperrors.ErrInvalidFormat)
	}
	defer rc.Close()

	out, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("create %q: %w", target, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, rc); err != nil {
		return fmt.Errorf("extract %q: %w", f.Name, err)
	}
	return nil
}

// locateModelFile probes the fixed candidate paths, then falls back to a
// recursive search for the first .bim file anywhere in the archive.
func (s *archiveSource) locateModelFile(dir string) (string, error) {
	for _, candidate := range modelCandidatePaths {
		p := filepath.Join(dir, candidate)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p, nil
		}
	}

	var found string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".bim") {
			found = path
			return fs.SkipAll
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("search for model description: %w", err)
	}
	if found == "" {
		return "", fmt.Errorf("model.bim not found in archive %q: %w", s.path, apperrors.ErrNotFound)
	}
	return found, nil
}

// Close removes the scratch extraction area. Cleanup is best-effort: a
// failure is logged, never returned as an error to the caller, and the
// directory is released at most once.
func (s *archiveSource) Close() error {
	if s.scratch == "" {
		return nil
	}
	if err := os.RemoveAll(s.scratch); err != nil && !errors.Is(err, fs.ErrNotExist) {
		s.logger.Warn("failed to clean up scratch directory",
			zap.String("scratch", s.scratch),
			zap.Error(err))
	} else {
		s.logger.Debug("cleaned up scratch directory", zap.String("scratch", s.scratch))
	}
	s.scratch = ""
	return nil
}
