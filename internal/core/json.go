package core

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// dateLayouts are the date encodings found in persisted and imported data,
// most specific first.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseDate accepts RFC 3339 timestamps as well as bare calendar dates.
// Bare dates are interpreted in UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

// UnmarshalJSON accepts the date as a timestamp or a bare calendar date.
func (t *Transaction) UnmarshalJSON(data []byte) error {
	type alias Transaction
	aux := struct {
		*alias
		Date string `json:"date"`
	}{alias: (*alias)(t)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.Date == "" {
		t.Date = time.Time{}
		return nil
	}
	d, err := ParseDate(aux.Date)
	if err != nil {
		return err
	}
	t.Date = d
	return nil
}
