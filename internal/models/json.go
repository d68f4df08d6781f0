package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSONDoc is a raw JSON column (jsonb in postgres). Keeping the raw bytes
// instead of a decoded map preserves the stored key order of documents, which
// the export pipeline relies on for column inference.
type JSONDoc json.RawMessage

// Value implements the driver.Valuer interface for JSONDoc
func (d JSONDoc) Value() (driver.Value, error) {
	if len(d) == 0 {
		return nil, nil
	}
	return []byte(d), nil
}

// Scan implements the sql.Scanner interface for JSONDoc
func (d *JSONDoc) Scan(value interface{}) error {
	if value == nil {
		*d = nil
		return nil
	}

	switch v := value.(type) {
	case []byte:
		*d = append((*d)[0:0], v...)
	case string:
		*d = JSONDoc(v)
	default:
		return fmt.Errorf("cannot scan %T into JSONDoc", value)
	}
	return nil
}

// MarshalJSON writes the raw document unchanged.
func (d JSONDoc) MarshalJSON() ([]byte, error) {
	if len(d) == 0 {
		return []byte("null"), nil
	}
	return d, nil
}

// UnmarshalJSON stores the raw document unchanged.
func (d *JSONDoc) UnmarshalJSON(data []byte) error {
	*d = append((*d)[0:0], data...)
	return nil
}

// IsNull reports whether the document is absent or JSON null.
func (d JSONDoc) IsNull() bool {
	return len(d) == 0 || string(d) == "null"
}

// GormDataType tells gorm to create a jsonb column.
func (JSONDoc) GormDataType() string {
	return "jsonb"
}
