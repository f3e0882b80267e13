package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ID is the canonical identifier of a server resource. The API emits ids
// either as JSON numbers or as strings; both decode into the same value.
type ID string

// String returns the id as a plain string
func (id ID) String() string {
	return string(id)
}

// UnmarshalJSON accepts a JSON string or number
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid id %s: %w", data, err)
	}
	if _, err := strconv.ParseInt(n.String(), 10, 64); err != nil {
		return fmt.Errorf("invalid id %s: not an integer", data)
	}
	*id = ID(n.String())
	return nil
}

// DataResponse wraps a single resource
type DataResponse[T any] struct {
	Data T `json:"data"`
}
