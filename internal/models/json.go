package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
)

// JSON is a map stored as a jsonb column
type JSON map[string]interface{}

// Value implements driver.Valuer for database serialization
func (j JSON) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan implements sql.Scanner for database deserialization
func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type for JSON scan: %T", value)
	}

	if len(data) == 0 {
		*j = nil
		return nil
	}

	if err := json.Unmarshal(data, j); err != nil {
		return errors.New("failed to unmarshal JSON value: " + err.Error())
	}
	return nil
}
