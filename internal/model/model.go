// Package model defines the data models for the application.
// All models use GORM for ORM operations with SQLite database.
package model

import (
	"database/sql/driver"
	"encoding/json"
)

// StringArray is a custom type for storing string arrays in SQLite
type StringArray []string

// Value implements driver.Valuer interface
func (s StringArray) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(s)
	return string(data), err
}

// Scan implements sql.Scanner interface
func (s *StringArray) Scan(value interface{}) error {
	if value == nil {
		*s = []string{}
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	}
	return json.Unmarshal(bytes, s)
}

// JSONMap is a custom type for storing JSON maps in SQLite
type JSONMap map[string]interface{}

// Value implements driver.Valuer interface
func (j JSONMap) Value() (driver.Value, error) {
	if j == nil {
		return "{}", nil
	}
	data, err := json.Marshal(j)
	return string(data), err
}

// Scan implements sql.Scanner interface
func (j *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*j = make(map[string]interface{})
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	}
	return json.Unmarshal(bytes, j)
}

// AllModels returns all models for auto-migration
func AllModels() []interface{} {
	return []interface{}{
		&ReportSnapshot{},
		&ReportEvent{},
		&ExportRecord{},
	}
}
