package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// RawEvent represents an unprocessed message from the source topic.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// OutputEvent is the serialized form destined for the sink topic.
type OutputEvent struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}

// NewOutputEvent serializes an assessment for the sink topic.
func NewOutputEvent(a Assessment) (OutputEvent, error) {
	data, err := json.Marshal(a)
	if err != nil {
		return OutputEvent{}, fmt.Errorf("serialize assessment: %w", err)
	}
	return OutputEvent{
		Key:   []byte(a.ID),
		Value: data,
		Headers: map[string]string{
			"grid_source": a.GridSource,
			"computed_at": a.ComputedAt.Format(time.RFC3339),
		},
	}, nil
}
