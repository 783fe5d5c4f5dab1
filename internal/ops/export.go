package ops

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/hpungsan/folio/internal/config"
	"github.com/hpungsan/folio/internal/db"
	"github.com/hpungsan/folio/internal/errors"
)

// ExportSchemaVersion is written in every manifest header.
const ExportSchemaVersion = "1.0"

// ExportInput contains parameters for the Export operation.
type ExportInput struct {
	Path          string // optional, default: <export_dir>/folio-<timestamp>.jsonl
	IncludeDrafts bool
}

// ExportOutput contains the result of the Export operation.
type ExportOutput struct {
	Path       string `json:"path"`
	Count      int    `json:"count"`
	ExportedAt int64  `json:"exported_at"`
}

// ExportHeader represents the header line in a JSONL manifest.
type ExportHeader struct {
	FolioExport   bool   `json:"_folio_export"`
	SchemaVersion string `json:"schema_version"`
	RunID         string `json:"run_id,omitempty"`
	ExportedAt    int64  `json:"exported_at"`
	IncludeDrafts bool   `json:"include_drafts"`
}

// Export writes the corpus as a JSONL manifest: a header line, then one
// article per line in listing order.
func Export(ctx context.Context, database *sql.DB, cfg *config.Config, input ExportInput) (*ExportOutput, error) {
	now := time.Now()
	exportedAt := now.Unix()

	exportPath := input.Path
	if exportPath == "" {
		exportPath = defaultExportPath(cfg, now)
	}
	if err := ValidateExportPath(exportPath); err != nil {
		return nil, err
	}

	// Query before touching the filesystem so a failed read leaves no file behind.
	info, err := db.GetLoadInfo(ctx, database)
	if err != nil {
		return nil, err
	}
	articles, err := db.ListForExport(ctx, database, input.IncludeDrafts)
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(exportPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to create export directory: %w", err))
	}

	// Write to temp file first, then atomic rename to preserve existing file on failure
	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to generate temp file name: %w", err))
	}
	tempPath := exportPath + "." + hex.EncodeToString(randBytes) + ".tmp"
	file, err := os.OpenFile(tempPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to create export file: %w", err))
	}

	// Clean up temp file on failure (original file is preserved)
	success := false
	defer func() {
		if file != nil {
			file.Close()
		}
		if !success {
			os.Remove(tempPath)
		}
	}()

	enc := json.NewEncoder(file)
	enc.SetEscapeHTML(false)

	header := ExportHeader{
		FolioExport:   true,
		SchemaVersion: ExportSchemaVersion,
		ExportedAt:    exportedAt,
		IncludeDrafts: input.IncludeDrafts,
	}
	if info != nil {
		header.RunID = info.RunID
	}
	if err := enc.Encode(header); err != nil {
		return nil, errors.NewInternal(err)
	}

	for _, a := range articles {
		select {
		case <-ctx.Done():
			return nil, errors.NewCancelled("export")
		default:
		}
		if err := enc.Encode(a); err != nil {
			return nil, errors.NewInternal(err)
		}
	}

	if err := file.Sync(); err != nil {
		return nil, errors.NewInternal(err)
	}

	// Close before atomic replace (required on Windows; fine elsewhere).
	if err := file.Close(); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to close export file: %w", err))
	}
	file = nil

	// os.Rename would follow a symlink created since validation.
	if fi, err := os.Lstat(exportPath); err == nil && fi.Mode()&os.ModeSymlink != 0 {
		return nil, errors.NewInvalidRequest("path must not be a symlink")
	}

	if err := os.Rename(tempPath, exportPath); err != nil {
		if runtime.GOOS == "windows" {
			if _, statErr := os.Stat(exportPath); statErr == nil {
				return nil, errors.NewInvalidRequest("export destination already exists; overwriting is not supported on Windows (choose a new path or delete the existing file)")
			}
		}
		return nil, errors.NewInternal(fmt.Errorf("failed to finalize export: %w", err))
	}

	success = true
	return &ExportOutput{
		Path:       exportPath,
		Count:      len(articles),
		ExportedAt: exportedAt,
	}, nil
}

// defaultExportPath generates <export_dir>/folio-<timestamp>.jsonl.
func defaultExportPath(cfg *config.Config, now time.Time) string {
	dir := config.DefaultConfig().ExportDir
	if cfg != nil && cfg.ExportDir != "" {
		dir = cfg.ExportDir
	}
	filename := fmt.Sprintf("folio-%s.jsonl", now.Format("2006-01-02T150405"))
	return filepath.Join(dir, filename)
}
