package loader

import (
	"encoding/json"
	"fmt"
	"io"
)

// ReadJSON parses a JSON array of flat objects, one sample per element.
func ReadJSON(r io.Reader) ([]Sample, error) {
	var raw []map[string]any
	dec := json.NewDecoder(r)
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	samples := make([]Sample, len(raw))
	for i, m := range raw {
		if m == nil {
			return nil, fmt.Errorf("row %d: null sample", i+1)
		}
		samples[i] = Sample(m)
	}
	return samples, nil
}
