package controllers

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownSummary is returned when decoding an unknown summary name.
var ErrUnknownSummary = errors.New("unknown summary")

// Summary describes the weather in a forecast. It travels as its name.
type Summary int

const (
	Freezing Summary = iota
	Bracing
	Chilly
	Cool
	Mild
	Warm
	Balmy
	Hot
	Sweltering
	Scorching
)

var summaryNames = []string{
	"Freezing", "Bracing", "Chilly", "Cool", "Mild",
	"Warm", "Balmy", "Hot", "Sweltering", "Scorching",
}

// OpenAPIEnum lists the names in ordinal order.
func (Summary) OpenAPIEnum() []string {
	out := make([]string, len(summaryNames))
	copy(out, summaryNames)
	return out
}

// Valid reports whether s is a known summary.
func (s Summary) Valid() bool {
	return s >= 0 && int(s) < len(summaryNames)
}

func (s Summary) String() string {
	if !s.Valid() {
		return fmt.Sprintf("Summary(%d)", int(s))
	}
	return summaryNames[s]
}

// MarshalText encodes the summary as its name.
func (s Summary) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownSummary, int(s))
	}
	return []byte(summaryNames[s]), nil
}

// UnmarshalText decodes a summary name, ignoring case.
func (s *Summary) UnmarshalText(text []byte) error {
	for i, name := range summaryNames {
		if strings.EqualFold(name, string(text)) {
			*s = Summary(i)
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownSummary, text)
}
