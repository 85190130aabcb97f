package tools

import (
	"bytes"
	"encoding/json"
	"fmt"
)

func encodeJSON(v interface{}) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("encode payload: %w", err)
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}
