package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
)

// jsonBytes normalises a scanned CLOB value. NULL, empty and "null" all mean no value.
func jsonBytes(value interface{}) ([]byte, error) {
	if value == nil {
		return nil, nil
	}
	var b []byte
	switch v := value.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return nil, errors.New("unsupported scan type " + fmt.Sprintf("%T", value))
	}
	if len(b) == 0 || string(b) == "null" {
		return nil, nil
	}
	return b, nil
}

// StringSlice is stored as a JSON array in a CLOB column.
type StringSlice []string

// Value implements the driver.Valuer interface
func (s StringSlice) Value() (driver.Value, error) {
	if s == nil {
		// nil 슬라이스는 "[]"로 저장
		return "[]", nil
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface
func (s *StringSlice) Scan(value interface{}) error {
	b, err := jsonBytes(value)
	if err != nil {
		return fmt.Errorf("StringSlice Scan: %w", err)
	}
	if b == nil {
		*s = StringSlice{}
		return nil
	}
	return json.Unmarshal(b, s)
}

// JSONMap is an event meta object stored as JSON text.
type JSONMap map[string]interface{}

func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (m *JSONMap) Scan(value interface{}) error {
	b, err := jsonBytes(value)
	if err != nil {
		return fmt.Errorf("JSONMap Scan: %w", err)
	}
	*m = JSONMap{}
	if b == nil {
		return nil
	}
	return json.Unmarshal(b, (*map[string]interface{})(m))
}

// AttemptItem mirrors domain.QuizItem inside the items CLOB.
type AttemptItem struct {
	CaseID     string `json:"caseId"`
	Selected   int    `json:"selected"`
	IsCorrect  bool   `json:"isCorrect"`
	AnsweredAt string `json:"answeredAt"`
}

// AttemptItems is the JSON encoded item list of a quiz attempt.
type AttemptItems []AttemptItem

func (a AttemptItems) Value() (driver.Value, error) {
	if a == nil {
		return "[]", nil
	}
	b, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (a *AttemptItems) Scan(value interface{}) error {
	b, err := jsonBytes(value)
	if err != nil {
		return fmt.Errorf("AttemptItems Scan: %w", err)
	}
	*a = AttemptItems{}
	if b == nil {
		return nil
	}
	return json.Unmarshal(b, a)
}
