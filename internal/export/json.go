package export

import (
	"encoding/json"
	"io"

	"panrgp/pkg/domain"
)

// Document is the JSON export layout.
type Document struct {
	Parameters *domain.RGPParameters `json:"parameters,omitempty"`
	Count      int                   `json:"count"`
	Regions    []domain.Region       `json:"regions"`
}

// WriteJSON writes an indented Document.
func WriteJSON(w io.Writer, in Input) error {
	regions := in.Regions
	if regions == nil {
		regions = []domain.Region{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(Document{Parameters: in.Parameters, Count: len(regions), Regions: regions})
}
