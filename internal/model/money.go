package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Money is a decimal amount. The inventory API may encode decimals either as
// JSON numbers or as strings, so both forms decode.
type Money float64

// UnmarshalJSON accepts 12.5, "12.50" and null.
func (m *Money) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("model: money %q: %w", s, err)
		}
		*m = Money(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("model: money: %w", err)
	}
	*m = Money(f)
	return nil
}

// Float returns the amount as a float64.
func (m Money) Float() float64 { return float64(m) }

// MoneyPtr returns a pointer to v.
func MoneyPtr(v float64) *Money {
	m := Money(v)
	return &m
}
