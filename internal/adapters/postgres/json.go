package postgres

import (
	"encoding/json"

	"carbonledger/internal/domain"
)

// jsonbOrNil marshals v for a jsonb column, passing NULL for empty values.
func jsonbOrNil(v any) any {
	switch t := v.(type) {
	case map[string]float64:
		if len(t) == 0 {
			return nil
		}
	case map[string]string:
		if len(t) == 0 {
			return nil
		}
	case []string:
		if len(t) == 0 {
			return nil
		}
	case *domain.Methodology:
		if t == nil {
			return nil
		}
	case nil:
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return b
}

// unmarshalInto decodes a jsonb column into out, tolerating NULL.
func unmarshalInto(raw []byte, out any) {
	if len(raw) == 0 {
		return
	}
	_ = json.Unmarshal(raw, out)
}
