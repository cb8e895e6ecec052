// internal/models/common.go
package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// FlexString decodes a JSON string or number into a string. Older catalogs
// and carts persisted numeric product ids.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*f = ""
		return nil
	}

	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}

	switch trimmed[0] {
	case '{', '[':
		return fmt.Errorf("cannot decode %s into string", trimmed)
	}

	*f = FlexString(trimmed)
	return nil
}

func (f FlexString) String() string {
	return strings.TrimSpace(string(f))
}

// Payload is a raw JSON document stored in a text column
type Payload []byte

func (p Payload) Value() (driver.Value, error) {
	if p == nil {
		return nil, nil
	}
	return string(p), nil
}

func (p *Payload) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*p = nil
	case []byte:
		*p = append(Payload(nil), v...)
	case string:
		*p = Payload(v)
	default:
		return fmt.Errorf("unsupported payload type %T", value)
	}
	return nil
}
