package format

import (
	"encoding/json"
	"io"

	"github.com/mithrel/cosense/pkg/api"
)

// NDJSONStreamWriter incrementally writes pages as NDJSON.
type NDJSONStreamWriter struct {
	enc *json.Encoder
}

func NewNDJSONStreamWriter(w io.Writer) *NDJSONStreamWriter {
	return &NDJSONStreamWriter{enc: json.NewEncoder(w)}
}

func (nw *NDJSONStreamWriter) WritePages(pages []api.PageInfo) error {
	for _, p := range pages {
		if err := nw.enc.Encode(p); err != nil {
			return err
		}
	}
	return nil
}

// Close is a no-op for NDJSON output.
func (nw *NDJSONStreamWriter) Close() error { return nil }
