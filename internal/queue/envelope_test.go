package queue

import (
	"encoding/json"
	"testing"
)

func TestWrapEnvelope(t *testing.T) {
	body, err := wrap(FillUpdates, map[string]string{"order_id": "0x01"})
	if err != nil {
		t.Fatalf("wrap failed: %v", err)
	}

	var decoded envelope
	if err := json.Unmarshal(body, &decoded); err != nil {
		t.Fatalf("envelope is not valid JSON: %v", err)
	}
	if decoded.Queue != FillUpdates {
		t.Fatalf("unexpected queue: %s", decoded.Queue)
	}
	if decoded.ID == "" {
		t.Fatalf("every job needs an id")
	}

	var payload map[string]string
	if err := json.Unmarshal(decoded.Payload, &payload); err != nil {
		t.Fatalf("payload is not valid JSON: %v", err)
	}
	if payload["order_id"] != "0x01" {
		t.Fatalf("payload not preserved: %+v", payload)
	}
}

func TestWrapRejectsUnserializablePayload(t *testing.T) {
	if _, err := wrap(Orders, make(chan int)); err == nil {
		t.Fatalf("expected an error for an unserializable payload")
	}
}
