package notify

import (
	"testing"
	"time"
)

func TestUpdateCompletedMessageRoundTrip(t *testing.T) {
	msg := UpdateCompletedMessage{
		Month:        3,
		Year:         2024,
		Transactions: 42,
		AsOf:         "03/31/2024",
		UpdatedAt:    time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC),
	}

	data, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	got, err := UpdateCompletedFromJSON(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got != msg {
		t.Errorf("round trip mismatch: %+v != %+v", got, msg)
	}
}

func TestUpdateCompletedFromJSONInvalid(t *testing.T) {
	if _, err := UpdateCompletedFromJSON([]byte("{not json")); err == nil {
		t.Error("expected error for malformed payload")
	}
}
