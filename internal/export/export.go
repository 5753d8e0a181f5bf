// Package export renders predicted regions as TSV, JSON or GFF.
package export

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"panrgp/pkg/domain"
)

// ErrUnknownFormat is returned for unsupported output formats.
var ErrUnknownFormat = errors.New("unknown export format")

// Format identifies an output encoding.
type Format string

const (
	FormatTSV  Format = "tsv"
	FormatJSON Format = "json"
	FormatGFF  Format = "gff"
)

// ParseFormat accepts a format name case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatTSV, FormatJSON, FormatGFF:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Extension returns the file extension for f, without the dot.
func (f Format) Extension() string { return string(f) }

// ContentType returns the MIME type written alongside exported blobs.
func (f Format) ContentType() string {
	switch f {
	case FormatTSV:
		return "text/tab-separated-values"
	case FormatJSON:
		return "application/json"
	case FormatGFF:
		return "text/x-gff"
	}
	return "application/octet-stream"
}

// Input is the data rendered by every writer. Organisms are only needed to
// resolve gene coordinates of regions crossing a contig origin in GFF output.
type Input struct {
	Regions    []domain.Region
	Organisms  []domain.Organism
	Parameters *domain.RGPParameters
}

// Write renders in using format f.
func Write(w io.Writer, f Format, in Input) error {
	switch f {
	case FormatTSV:
		return WriteTSV(w, in)
	case FormatJSON:
		return WriteJSON(w, in)
	case FormatGFF:
		return WriteGFF(w, in)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, string(f))
}
