package domain

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// Reply markers used by the vision collaborator.
const (
	MarkerDry   = "СУХОЙ:"
	MarkerWet   = "ВЛАЖНЫЙ:"
	MarkerError = "ОШИБКА:"
)

// Reading is a dry/wet-bulb pair in degrees C, typed by a user or read off a photo.
type Reading struct {
	TDry float64 `json:"t_dry"`
	TWet float64 `json:"t_wet"`
}

// Transcriber reads thermometer values off a psychrometer photograph.
type Transcriber interface {
	// Transcribe returns the readings visible in image. Errors wrap ErrUpstreamParse
	// when the collaborator answered but the answer was unusable.
	Transcribe(ctx context.Context, image []byte) (Reading, error)
}

// ParseTranscription extracts a Reading from the collaborator's line grammar.
// An ОШИБКА line short-circuits with ErrInstrumentUnreadable; a reply missing
// either reading yields ErrMalformedTranscription.
func ParseTranscription(reply string) (Reading, error) {
	var dry, wet *float64

	for _, line := range strings.Split(reply, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, MarkerError):
			reason := strings.TrimSpace(strings.TrimPrefix(line, MarkerError))
			return Reading{}, fmt.Errorf("%w: %s", ErrInstrumentUnreadable, reason)
		case strings.HasPrefix(line, MarkerDry):
			if v, err := parseDecimal(strings.TrimPrefix(line, MarkerDry)); err == nil {
				dry = &v
			}
		case strings.HasPrefix(line, MarkerWet):
			if v, err := parseDecimal(strings.TrimPrefix(line, MarkerWet)); err == nil {
				wet = &v
			}
		}
	}

	if dry == nil || wet == nil {
		return Reading{}, fmt.Errorf("%w: %q", ErrMalformedTranscription, reply)
	}
	return Reading{TDry: *dry, TWet: *wet}, nil
}

// parseDecimal parses a temperature, tolerating a decimal comma.
func parseDecimal(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	return strconv.ParseFloat(s, 64)
}
