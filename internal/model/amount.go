package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Amount is an ingredient quantity. Clients send either a number ("2", "0.5")
// or free text ("prstohvat").
type Amount struct {
	Number *float64
	Text   *string
}

// NumberAmount builds a numeric amount.
func NumberAmount(n float64) *Amount {
	return &Amount{Number: &n}
}

// TextAmount builds a free-text amount.
func TextAmount(s string) *Amount {
	return &Amount{Text: &s}
}

func (a Amount) String() string {
	switch {
	case a.Number != nil:
		return strconv.FormatFloat(*a.Number, 'f', -1, 64)
	case a.Text != nil:
		return *a.Text
	}
	return ""
}

// MarshalJSON implements json.Marshaler
func (a Amount) MarshalJSON() ([]byte, error) {
	switch {
	case a.Number != nil:
		return json.Marshal(*a.Number)
	case a.Text != nil:
		return json.Marshal(*a.Text)
	}
	return []byte("null"), nil
}

// UnmarshalJSON accepts a JSON number or string and rejects anything else.
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*a = Amount{}
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		a.Text = &s
		return nil
	case '{', '[', 't', 'f':
		return fmt.Errorf("amount must be a number or a string, got %s", data)
	}
	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("amount must be a number or a string: %w", err)
	}
	a.Number = &n
	return nil
}
