package format

import (
	"encoding/json"
	"io"

	"github.com/mithrel/cosense/pkg/api"
)

// WriteNDJSONSearch writes search hits as newline-delimited JSON objects.
func WriteNDJSONSearch(w io.Writer, res api.SearchResult) error {
	enc := json.NewEncoder(w)
	for _, p := range res.Pages {
		if err := enc.Encode(p); err != nil {
			return err
		}
	}
	return nil
}
