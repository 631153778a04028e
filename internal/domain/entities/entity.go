package entities

import (
	"encoding/json"
	"fmt"
)

// Entity is a record identified by an opaque id, unique within its collection
type Entity interface {
	EntityID() string
}

// Record is an entity whose attributes are opaque to the caller
type Record map[string]any

// EntityID returns the "id" attribute, formatted as a string when the backend sends a number
func (r Record) EntityID() string {
	switch id := r["id"].(type) {
	case nil:
		return ""
	case string:
		return id
	case json.Number:
		return id.String()
	case float64:
		return fmt.Sprintf("%.0f", id)
	default:
		return fmt.Sprint(id)
	}
}

// MergePatch shallow-merges patch into a copy of entity. Keys in patch overwrite existing
// attributes and a nil value is written as null. The id can never be changed by a patch.
func MergePatch[T Entity](entity T, patch map[string]any) (T, error) {
	var zero T
	if len(patch) == 0 {
		return entity, nil
	}

	raw, err := json.Marshal(entity)
	if err != nil {
		return zero, fmt.Errorf("failed to encode entity: %w", err)
	}
	attrs := map[string]any{}
	if err := json.Unmarshal(raw, &attrs); err != nil {
		return zero, fmt.Errorf("failed to decode entity attributes: %w", err)
	}

	id := entity.EntityID()
	for k, v := range patch {
		if k == "id" {
			continue
		}
		attrs[k] = v
	}
	if _, ok := attrs["id"]; !ok && id != "" {
		attrs["id"] = id
	}

	merged, err := json.Marshal(attrs)
	if err != nil {
		return zero, fmt.Errorf("failed to encode merged attributes: %w", err)
	}
	var out T
	if err := json.Unmarshal(merged, &out); err != nil {
		return zero, fmt.Errorf("failed to decode merged entity: %w", err)
	}
	return out, nil
}
