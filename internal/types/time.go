package types

import (
	"fmt"
	"strings"
	"time"
)

// Time unmarshals the backend's timestamp format. The order service emits
// LocalDateTime values without a zone offset ("2006-01-02T15:04:05"), but
// auth timestamps are full RFC 3339. Accept both.
type Time struct {
	time.Time
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func (t *Time) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range timeLayouts {
		parsed, err := time.Parse(layout, s)
		if err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("unrecognized timestamp %q", s)
}

func (t Time) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + t.Format(time.RFC3339) + `"`), nil
}

// Display renders the date portion for list and detail views.
func (t Time) Display() string {
	if t.IsZero() {
		return ""
	}
	return t.Format("Jan 2, 2006")
}
