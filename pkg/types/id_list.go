package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// IDList is an ordered list of ids stored as a JSON array so it works on both postgres and sqlite.
type IDList []uuid.UUID

// Value implements driver.Valuer.
func (l IDList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	payload, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("id list: marshal %w", err)
	}
	return string(payload), nil
}

// Scan implements sql.Scanner.
func (l *IDList) Scan(value interface{}) error {
	raw, err := jsonBytes(value)
	if err != nil {
		return fmt.Errorf("id list: %w", err)
	}
	if len(raw) == 0 {
		*l = IDList{}
		return nil
	}
	var decoded IDList
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return fmt.Errorf("id list: unmarshal %w", err)
	}
	*l = decoded
	return nil
}
