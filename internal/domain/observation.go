package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// observationNamespace scopes deterministic observation IDs.
var observationNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("urn:psychrometer:observation"))

// RawReading is an unprocessed message from the readings source topic.
type RawReading struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// readingPayload is the JSON body published by field stations.
// Pointers distinguish a missing temperature from 0 °C.
type readingPayload struct {
	Station    string     `json:"station"`
	TDry       *float64   `json:"t_dry"`
	TWet       *float64   `json:"t_wet"`
	ObservedAt *time.Time `json:"observed_at"`
}

// Observation is a station reading together with its calculated humidity.
type Observation struct {
	ID          string    `json:"id"`
	Station     string    `json:"station"`
	Reading     Reading   `json:"reading"`
	ObservedAt  time.Time `json:"observed_at"`
	Result      Result    `json:"result"`
	Dataset     string    `json:"dataset"`
	ProcessedAt time.Time `json:"processed_at"`

	RawPayload []byte `json:"-"`
}

// OutputEvent is the serialized form destined for the sink topic.
type OutputEvent struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}

// ParseRawReading decodes a station message. Missing temperatures are a parse
// error; the observation time falls back to the message timestamp.
func ParseRawReading(raw RawReading) (Observation, error) {
	var p readingPayload
	if err := json.Unmarshal(raw.Value, &p); err != nil {
		return Observation{}, fmt.Errorf("parse raw reading: %w", err)
	}
	if p.TDry == nil || p.TWet == nil {
		return Observation{}, fmt.Errorf("parse raw reading: %w: t_dry and t_wet are required", ErrInvalidInput)
	}

	observedAt := raw.Timestamp.UTC()
	if p.ObservedAt != nil {
		observedAt = p.ObservedAt.UTC()
	}
	station := strings.TrimSpace(p.Station)
	reading := Reading{TDry: *p.TDry, TWet: *p.TWet}

	return Observation{
		ID:         generateID(station, observedAt, reading),
		Station:    station,
		Reading:    reading,
		ObservedAt: observedAt,
		RawPayload: raw.Value,
	}, nil
}

// Evaluate runs the calculator over the observation's reading and stamps it.
func Evaluate(obs Observation, calc *Calculator) Observation {
	obs.Result = calc.CalculateReading(obs.Reading)
	obs.Dataset = DatasetVersion
	obs.ProcessedAt = clock.Now().UTC()
	return obs
}

// generateID derives a UUIDv5 from the observation's identifying fields, so
// replaying the same message yields the same ID.
func generateID(station string, observedAt time.Time, r Reading) string {
	name := fmt.Sprintf("%s|%s|%g|%g", station, observedAt.Format(time.RFC3339Nano), r.TDry, r.TWet)
	return uuid.NewSHA1(observationNamespace, []byte(name)).String()
}

// SerializeObservation encodes an evaluated observation for the sink topic,
// keyed by ID with the outcome and processing time as headers.
func SerializeObservation(obs Observation) (OutputEvent, error) {
	data, err := json.Marshal(obs)
	if err != nil {
		return OutputEvent{}, fmt.Errorf("serialize observation: %w", err)
	}
	return OutputEvent{
		Key:   []byte(obs.ID),
		Value: data,
		Headers: map[string]string{
			"outcome":      obs.Result.Outcome(),
			"processed_at": obs.ProcessedAt.Format(time.RFC3339),
			"dataset":      obs.Dataset,
		},
	}, nil
}
