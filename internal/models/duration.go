package models

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Duration is a time.Duration that travels as "H:MM:SS" on the wire,
// e.g. "0:20:15" or "1:00:00".
type Duration time.Duration

// ParseDuration parses "H:MM:SS" or "MM:SS". Go duration syntax ("20m15s")
// is accepted as a fallback.
func ParseDuration(s string) (Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty duration")
	}
	if !strings.Contains(s, ":") {
		d, err := time.ParseDuration(s)
		if err != nil {
			return 0, fmt.Errorf("parsing duration %q: %w", s, err)
		}
		return Duration(d), nil
	}

	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("parsing duration %q: too many fields", s)
	}
	var total time.Duration
	units := []time.Duration{time.Second, time.Minute, time.Hour}
	for i := range parts {
		p := parts[len(parts)-1-i]
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("parsing duration %q: invalid field %q", s, p)
		}
		if (i < 2 && n > 59) || int64(n) > math.MaxInt64/int64(units[i]) {
			return 0, fmt.Errorf("parsing duration %q: field %q out of range", s, p)
		}
		add := time.Duration(n) * units[i]
		if total > math.MaxInt64-add {
			return 0, fmt.Errorf("parsing duration %q: out of range", s)
		}
		total += add
	}
	return Duration(total), nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// String formats as "H:MM:SS".
func (d Duration) String() string {
	total := int64(time.Duration(d).Round(time.Second) / time.Second)
	sign := ""
	if total < 0 {
		sign = "-"
		total = -total
	}
	return fmt.Sprintf("%s%d:%02d:%02d", sign, total/3600, (total/60)%60, total%60)
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("duration must be a string: %w", err)
	}
	parsed, err := ParseDuration(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
