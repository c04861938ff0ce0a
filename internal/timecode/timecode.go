// Package timecode provides the time offset value used for durations and
// start positions reported by ffmpeg.
package timecode

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ErrInvalid is returned when a timecode or seconds string cannot be parsed.
var ErrInvalid = errors.New("invalid timecode")

// Offset is an immutable time offset with nanosecond resolution.
type Offset struct {
	d time.Duration
}

// FromTimecode parses "hh:mm:ss.fff" (the fraction may have any number of
// digits, ffmpeg usually prints two).
func FromTimecode(value string) (Offset, error) {
	value = strings.TrimSpace(value)
	parts := strings.Split(value, ":")
	if len(parts) != 3 {
		return Offset{}, fmt.Errorf("%w: %q", ErrInvalid, value)
	}
	hours, err := parseUnsigned(parts[0])
	if err != nil {
		return Offset{}, fmt.Errorf("%w: hours in %q", ErrInvalid, value)
	}
	minutes, err := parseUnsigned(parts[1])
	if err != nil || minutes > 59 {
		return Offset{}, fmt.Errorf("%w: minutes in %q", ErrInvalid, value)
	}
	whole, frac, _ := strings.Cut(parts[2], ".")
	seconds, err := parseUnsigned(whole)
	if err != nil || seconds > 59 {
		return Offset{}, fmt.Errorf("%w: seconds in %q", ErrInvalid, value)
	}
	var nanos int64
	if frac != "" {
		if len(frac) > 9 {
			frac = frac[:9]
		}
		n, err := parseUnsigned(frac)
		if err != nil {
			return Offset{}, fmt.Errorf("%w: fraction in %q", ErrInvalid, value)
		}
		nanos = n * int64(math.Pow10(9-len(frac)))
	}
	total := time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute +
		time.Duration(seconds)*time.Second +
		time.Duration(nanos)
	return Offset{d: total}, nil
}

// FromSeconds builds an offset from a plain seconds count.
func FromSeconds(seconds float64) Offset {
	return Offset{d: time.Duration(math.Round(seconds * float64(time.Second)))}
}

// ParseSeconds parses a decimal seconds string such as "0.023220".
func ParseSeconds(value string) (Offset, error) {
	value = strings.TrimSpace(value)
	seconds, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return Offset{}, fmt.Errorf("%w: seconds %q", ErrInvalid, value)
	}
	return FromSeconds(seconds), nil
}

// Seconds returns the offset as fractional seconds.
func (o Offset) Seconds() float64 {
	return o.d.Seconds()
}

// Duration returns the offset as a time.Duration.
func (o Offset) Duration() time.Duration {
	return o.d
}

// String renders the offset as hh:mm:ss.mmm.
func (o Offset) String() string {
	d := o.d
	sign := ""
	if d < 0 {
		sign = "-"
		d = -d
	}
	ms := d.Milliseconds()
	h := ms / 3_600_000
	m := (ms / 60_000) % 60
	s := (ms / 1000) % 60
	return fmt.Sprintf("%s%02d:%02d:%02d.%03d", sign, h, m, s, ms%1000)
}

// MarshalJSON encodes the offset as seconds.
func (o Offset) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.Seconds())
}

// UnmarshalJSON accepts a seconds number.
func (o *Offset) UnmarshalJSON(data []byte) error {
	var seconds float64
	if err := json.Unmarshal(data, &seconds); err != nil {
		return err
	}
	*o = FromSeconds(seconds)
	return nil
}

func parseUnsigned(value string) (int64, error) {
	if value == "" {
		return 0, ErrInvalid
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return 0, ErrInvalid
		}
	}
	return strconv.ParseInt(value, 10, 64)
}
