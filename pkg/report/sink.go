package report

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/dogsync/pkg/constants"
	"github.com/agentstation/dogsync/pkg/errors"
)

// Format is a report serialization format.
type Format int

// Format constants.
const (
	FormatJSON Format = iota
	FormatYAML
)

// String returns the string representation of the format.
func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	}
	return "unknown"
}

// FormatFor picks a format from the file extension. Anything that is not
// .yaml or .yml is written as JSON.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Sink persists a finished report.
type Sink interface {
	Write(ctx context.Context, r *Report) error
}

// Encode serializes r in the given format.
func Encode(w io.Writer, r *Report, format Format) error {
	switch format {
	case FormatYAML:
		data, err := yaml.Marshal(r)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}
}

// FileSink writes the report to a file, replacing it atomically.
type FileSink struct {
	Path   string
	Format Format
}

// NewFileSink returns a sink for path with the format inferred from its extension.
func NewFileSink(path string) *FileSink {
	return &FileSink{Path: path, Format: FormatFor(path)}
}

// Write implements Sink. Failures wrap errors.ErrReportPersistFailed.
func (s *FileSink) Write(ctx context.Context, r *Report) error {
	if err := ctx.Err(); err != nil {
		return errors.NewReportPersistError(s.Path, err)
	}

	var buf bytes.Buffer
	if err := Encode(&buf, r, s.Format); err != nil {
		return errors.NewReportPersistError(s.Path, err)
	}

	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, constants.DirPermissions); err != nil {
		return errors.NewReportPersistError(s.Path, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.Path)+".*.tmp")
	if err != nil {
		return errors.NewReportPersistError(s.Path, err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return errors.NewReportPersistError(s.Path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return errors.NewReportPersistError(s.Path, err)
	}
	if err := os.Chmod(tmpPath, constants.FilePermissions); err != nil {
		_ = os.Remove(tmpPath)
		return errors.NewReportPersistError(s.Path, err)
	}

	// Atomically move temp file to final location
	if err := os.Rename(tmpPath, s.Path); err != nil {
		_ = os.Remove(tmpPath)
		return errors.NewReportPersistError(s.Path, err)
	}
	return nil
}

// WriterSink encodes the report to an io.Writer, e.g. stdout.
type WriterSink struct {
	W      io.Writer
	Format Format
}

// Write implements Sink.
func (s *WriterSink) Write(_ context.Context, r *Report) error {
	if err := Encode(s.W, r, s.Format); err != nil {
		return errors.NewReportPersistError("<writer>", err)
	}
	return nil
}
