package utils

import (
	"encoding/json"
	"fmt"
)

// ToPrettyJSON marshals v with two-space indentation and a trailing newline
func ToPrettyJSON(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to format JSON: %w", err)
	}
	return append(data, '\n'), nil
}
