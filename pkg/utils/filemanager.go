// =============================================================================
// Sales Dashboard - File Manager Utility
// =============================================================================
//
// This module provides the file helpers used when a report is written to
// disk instead of the terminal:
//   - Output directory management
//   - Report file naming
//   - Safe report creation (write to a temp file, then rename)
//
// NAMING:
//   Report names come from the configured output_name_format. A report is
//   never written over an existing file; the {uuid} placeholder or the
//   timestamp keeps names unique.
//
// =============================================================================

package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager places generated reports in an output directory.
type FileManager struct {
	// OutputDir is the directory where reports are placed.
	OutputDir string

	// NameFormat is the report file name template (see GenerateOutputFileName).
	NameFormat string

	// now is replaced in tests.
	now func() time.Time
}

// NewFileManager creates a FileManager for outputDir.
func NewFileManager(outputDir, nameFormat string) *FileManager {
	return &FileManager{
		OutputDir:  outputDir,
		NameFormat: nameFormat,
		now:        time.Now,
	}
}

// =============================================================================
// DIRECTORY MANAGEMENT
// =============================================================================

// EnsureOutputDir creates the output directory if it doesn't exist.
func (fm *FileManager) EnsureOutputDir() error {
	if err := os.MkdirAll(fm.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", fm.OutputDir, err)
	}
	return nil
}

// =============================================================================
// REPORT FILES
// =============================================================================

// WriteReport creates a new report for source in the output directory and
// fills it with write. The file only appears under its final name once write
// has succeeded.
//
// PARAMETERS:
//   - source: The uploaded file name; fills the {source} placeholder.
//   - ext: The report extension, including the dot (e.g. ".xlsx").
//   - write: Renders the report.
//
// RETURNS:
//   - The path to the report.
//   - An error if the directory, the file or write fails.
func (fm *FileManager) WriteReport(source, ext string, write func(io.Writer) error) (string, error) {
	if err := fm.EnsureOutputDir(); err != nil {
		return "", err
	}

	name := GenerateOutputFileName(fm.NameFormat, map[string]string{
		"source": SourceStem(source),
	}, ext, fm.clock())
	path := filepath.Join(fm.OutputDir, name)
	if FileExists(path) {
		return "", fmt.Errorf("report %s already exists", path)
	}

	tmp, err := os.CreateTemp(fm.OutputDir, ".report-*")
	if err != nil {
		return "", fmt.Errorf("failed to create report: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to close report: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("failed to move report into place: %w", err)
	}

	return path, nil
}

func (fm *FileManager) clock() time.Time {
	if fm.now == nil {
		return time.Now()
	}
	return fm.now()
}

// =============================================================================
// OUTPUT FILE NAMING
// =============================================================================

// GenerateOutputFileName generates a report file name.
//
// PARAMETERS:
//   - format: The format string for the file name.
//             Placeholders:
//               {uuid}      - A random UUID
//               {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
//               {date}      - Current date (YYYYMMDD)
//               {time}      - Current time (HHMMSS)
//               {source}    - Uploaded file name (without extension)
//   - params: A map of placeholder values.
//   - ext: The extension to ensure, including the dot.
//   - now: The time used for the date and time placeholders.
//
// RETURNS:
//   - The generated file name.
//
// EXAMPLE:
//   format: "{source}_{timestamp}"
//   params: {"source": "sales_march"}
//   output: "sales_march_20240115_143022.xlsx"
func GenerateOutputFileName(format string, params map[string]string, ext string, now time.Time) string {
	replacements := map[string]string{
		"{timestamp}": now.Format("20060102_150405"),
		"{date}":      now.Format("20060102"),
		"{time}":      now.Format("150405"),
	}
	if strings.Contains(format, "{uuid}") {
		replacements["{uuid}"] = uuid.New().String()
	}

	for key, value := range params {
		replacements["{"+key+"}"] = sanitizeName(value)
	}

	result := format
	for placeholder, value := range replacements {
		result = strings.ReplaceAll(result, placeholder, value)
	}
	if result == "" {
		result = "report_" + now.Format("20060102_150405")
	}

	if ext != "" && !strings.HasSuffix(strings.ToLower(result), strings.ToLower(ext)) {
		result += ext
	}

	return result
}

// SourceStem returns the base name of an uploaded file without its
// extension.
func SourceStem(name string) string {
	base := filepath.Base(name)
	if base == "." || base == string(filepath.Separator) {
		return ""
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// sanitizeName keeps placeholder values from introducing path separators.
func sanitizeName(value string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, value)
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
