package gateway

import (
	"encoding/json"

	"github.com/jrsteele09/gym-dashboard/internal/errors"
)

// Record is one row of a backend collection
type Record = map[string]any

// Records extracts a collection from the shapes the backend uses interchangeably:
// {"data": [...]}, {"<key>": [...]} and a bare array.
func Records(body []byte, key string) ([]Record, error) {
	var list []Record
	if err := json.Unmarshal(body, &list); err == nil {
		return list, nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil {
		return nil, errors.Wrapf(errors.ErrMalformedResponse, "collection body: %v", err)
	}

	for _, field := range []string{"data", key} {
		raw, ok := obj[field]
		if !ok || field == "" {
			continue
		}
		if err := json.Unmarshal(raw, &list); err == nil {
			return list, nil
		}
	}
	return nil, errors.Wrapf(errors.ErrMalformedResponse, "no %q collection in body", key)
}
