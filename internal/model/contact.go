package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Contact is one contact-form submission.
type Contact struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Message   string    `json:"message"`
	Timestamp Timestamp `json:"timestamp"`
	Read      bool      `json:"read"`
}

// legacyLayout is the offset-less ISO-8601 form found in older contact files.
const legacyLayout = "2006-01-02T15:04:05.999999999"

// Timestamp is a time.Time that also decodes ISO-8601 values without a zone
// offset, interpreting them in the server's local zone.
type Timestamp struct {
	time.Time
}

// Now returns the current local time as a Timestamp.
func Now() Timestamp {
	return Timestamp{Time: time.Now()}
}

// Equal reports whether t and u represent the same instant.
func (t Timestamp) Equal(u Timestamp) bool {
	return t.Time.Equal(u.Time)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Time.Format(time.RFC3339Nano))
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	if parsed, err := time.Parse(time.RFC3339Nano, s); err == nil {
		t.Time = parsed
		return nil
	}
	parsed, err := time.ParseInLocation(legacyLayout, s, time.Local)
	if err != nil {
		return fmt.Errorf("timestamp: unrecognised format %q", s)
	}
	t.Time = parsed
	return nil
}
