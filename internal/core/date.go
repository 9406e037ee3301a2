package core

import (
	"strings"
	"time"
)

// DateLayout is the display and wire layout of transaction dates.
const DateLayout = "02/01/2006"

// ISODateLayout is what HTML date inputs submit and what the API returns.
const ISODateLayout = "2006-01-02"

// Date is a calendar day. The wrapped time is always midnight UTC so that
// parsing, rendering and CSV output agree regardless of the host timezone.
type Date struct {
	time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// Today returns the current UTC calendar day.
func Today() Date {
	now := time.Now().UTC()
	return NewDate(now.Year(), now.Month(), now.Day())
}

// ParseDate accepts DD/MM/YYYY, YYYY-MM-DD and RFC 3339 timestamps.
// Timestamps are reduced to their UTC calendar day.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, ErrInvalidDate
	}
	for _, layout := range []string{DateLayout, ISODateLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			return NewDate(t.Year(), t.Month(), t.Day()), nil
		}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return NewDate(t.Year(), t.Month(), t.Day()), nil
		}
	}
	return Date{}, ErrInvalidDate
}

// FormatDate renders d as DD/MM/YYYY.
func FormatDate(d Date) string {
	return d.UTC().Format(DateLayout)
}

func (d Date) String() string { return FormatDate(d) }

// ISO renders d as YYYY-MM-DD.
func (d Date) ISO() string { return d.UTC().Format(ISODateLayout) }

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}
