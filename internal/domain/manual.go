package domain

import (
	"fmt"
	"strings"
)

// ParseManualInput parses typed input of the form "Tdry Twet", e.g. "20 15" or "20,5 16".
func ParseManualInput(text string) (Reading, error) {
	fields := strings.Fields(text)
	if len(fields) != 2 {
		return Reading{}, fmt.Errorf("%w: got %d", ErrManualFormat, len(fields))
	}

	dry, err := parseDecimal(fields[0])
	if err != nil {
		return Reading{}, fmt.Errorf("%w: t_dry %q", ErrInvalidInput, fields[0])
	}
	wet, err := parseDecimal(fields[1])
	if err != nil {
		return Reading{}, fmt.Errorf("%w: t_wet %q", ErrInvalidInput, fields[1])
	}
	return Reading{TDry: dry, TWet: wet}, nil
}
