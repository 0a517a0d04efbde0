package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
)

// JSONDocument stores an opaque JSON value in a JSONB column.
type JSONDocument []byte

// Value implements the driver.Valuer interface
func (d JSONDocument) Value() (driver.Value, error) {
	if len(d) == 0 {
		return nil, nil
	}
	if !json.Valid(d) {
		return nil, errors.New("JSONDocument Value: invalid JSON")
	}
	return string(d), nil
}

// Scan implements the sql.Scanner interface
func (d *JSONDocument) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*d = nil
	case []byte:
		*d = append((*d)[:0], v...)
	case string:
		*d = JSONDocument(v)
	default:
		return fmt.Errorf("JSONDocument Scan: unsupported type %T", value)
	}
	return nil
}
