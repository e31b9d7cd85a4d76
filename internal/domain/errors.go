package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedTable is returned when a reference dataset violates the table invariants.
	ErrMalformedTable = errors.New("malformed reference table")

	// ErrOutOfRange is returned by Lookup when the query falls outside the table.
	ErrOutOfRange = errors.New("no table data for this combination")

	// ErrInvalidInput indicates a missing, non-numeric or non-finite temperature.
	ErrInvalidInput = errors.New("invalid temperature input")

	// ErrOrderingViolation indicates a wet-bulb reading above the dry-bulb reading.
	ErrOrderingViolation = errors.New("wet-bulb reading exceeds dry-bulb reading")

	// ErrNoDataForRange indicates a valid request outside the calibrated table.
	ErrNoDataForRange = errors.New("no data for range")

	// ErrUpstreamParse indicates the transcription collaborator's reply was unusable.
	ErrUpstreamParse = errors.New("upstream transcription failure")

	// ErrMalformedTranscription is returned when a reply lacks one or both readings.
	ErrMalformedTranscription = fmt.Errorf("%w: reply does not match the reading grammar", ErrUpstreamParse)

	// ErrInstrumentUnreadable is returned when the collaborator reports it could not read the instrument.
	ErrInstrumentUnreadable = fmt.Errorf("%w: instrument could not be read", ErrUpstreamParse)

	// ErrManualFormat is returned when manual input is not exactly two values.
	ErrManualFormat = errors.New("expected two values: t_dry t_wet")
)
