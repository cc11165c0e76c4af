package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// envelope is the wire format of a queued job.
type envelope struct {
	ID      string          `json:"id"`
	Queue   string          `json:"queue"`
	SentAt  time.Time       `json:"sent_at"`
	Payload json.RawMessage `json:"payload"`
}

func wrap(queue string, payload interface{}) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	body, err := json.Marshal(envelope{
		ID:      uuid.NewString(),
		Queue:   queue,
		SentAt:  time.Now().UTC(),
		Payload: raw,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal envelope: %w", err)
	}
	return body, nil
}
