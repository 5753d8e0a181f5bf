package ingest

import (
	"compress/gzip"
	"fmt"
	"io"
	"strings"
)

// Read decodes one annotation named name, a file path or blob key. The
// format is inferred from the extension and ".gz" inputs are decompressed.
// GFF inputs describe a single organism named after the file.
func Read(r io.Reader, name string, opts GFFOptions) (Dataset, error) {
	format, err := FormatFor(name)
	if err != nil {
		return Dataset{}, err
	}
	if strings.HasSuffix(name, ".gz") {
		gz, err := gzip.NewReader(r)
		if err != nil {
			return Dataset{}, fmt.Errorf("%s: %w", name, err)
		}
		defer func() { _ = gz.Close() }()
		r = gz
	}
	var d Dataset
	switch format {
	case FormatGFF:
		opts.Organism = OrganismName(name)
		d, err = ReadGFF(r, opts)
	default:
		d, err = ReadJSON(r)
	}
	if err != nil {
		return Dataset{}, fmt.Errorf("%s: %w", name, err)
	}
	return d, nil
}
