// =============================================================================
// Sales Dashboard - Report Writer Module
// =============================================================================
//
// This module renders a computed set of views (types.Views) for consumers
// outside the core. It does not compute anything; it only lays out the rows
// it is given.
//
// OUTPUT FORMATS:
//   - table : aligned plain-text tables for a terminal
//   - json  : one JSON document (machine consumption, charts)
//   - xml   : one XML document rooted at <SalesReport>
//   - xlsx  : a workbook with one sheet per view and a revenue bar chart
//
// =============================================================================

package reportwriter

import (
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ginjaninja78/sales-dashboard/internal/types"
)

// =============================================================================
// FORMATS
// =============================================================================

// Format is an output format.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatXML   Format = "xml"
	FormatXLSX  Format = "xlsx"
)

// ParseFormat validates an output format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatTable, FormatJSON, FormatXML, FormatXLSX:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want table, json, xml or xlsx)", s)
	}
}

// Extension returns the file extension used when the report is written to
// a file.
func (f Format) Extension() string {
	if f == FormatTable {
		return ".txt"
	}
	return "." + string(f)
}

// =============================================================================
// WRITER FUNCTIONS
// =============================================================================

// Write renders views to w in the requested format.
//
// PARAMETERS:
//   - w: The destination.
//   - views: The computed views.
//   - format: One of the Format constants.
//
// RETURNS:
//   - An error if the format is unknown or writing fails.
func Write(w io.Writer, views *types.Views, format Format) error {
	if views == nil {
		return errors.New("no views to write")
	}

	switch format {
	case FormatTable:
		return WriteTable(w, views)
	case FormatJSON:
		return WriteJSON(w, views)
	case FormatXML:
		return WriteXML(w, views)
	case FormatXLSX:
		return WriteXLSX(w, views)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

// WriteJSON writes views as an indented JSON document.
func WriteJSON(w io.Writer, views *types.Views) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(views); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// xmlReport names the root element of the XML report.
type xmlReport struct {
	XMLName xml.Name `xml:"SalesReport"`
	*types.Views
}

// WriteXML writes views as an indented XML document with a declaration.
func WriteXML(w io.Writer, views *types.Views) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("failed to write XML header: %w", err)
	}

	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(xmlReport{Views: views}); err != nil {
		return fmt.Errorf("failed to marshal XML: %w", err)
	}
	if err := enc.Flush(); err != nil {
		return fmt.Errorf("failed to flush XML: %w", err)
	}
	_, err := io.WriteString(w, "\n")
	return err
}
