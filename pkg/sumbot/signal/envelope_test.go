package signal

import (
	"encoding/json"
	"testing"
)

func TestNormalize(t *testing.T) {
	t.Run("direct data message", func(t *testing.T) {
		item := Item{Envelope: &Envelope{
			SourceNumber: "+1555",
			SourceName:   "Alice",
			Timestamp:    100,
			DataMessage: &DataMessage{
				Message:   "hello",
				GroupInfo: &GroupInfo{GroupID: "g1"},
			},
		}}

		msg, ok := Normalize(item)
		if !ok {
			t.Fatal("expected a message")
		}
		if msg.SourceNumber != "+1555" || msg.SourceName != "Alice" {
			t.Errorf("unexpected sender: %q %q", msg.SourceNumber, msg.SourceName)
		}
		if msg.GroupID != "g1" {
			t.Errorf("expected group g1, got %q", msg.GroupID)
		}
		if msg.Text != "hello" {
			t.Errorf("expected text 'hello', got %q", msg.Text)
		}
		if msg.Timestamp != TimeToken(100) {
			t.Errorf("unexpected timestamp token %q", msg.Timestamp)
		}
		if msg.IsReply() {
			t.Error("expected no quote")
		}
	})

	t.Run("synced sent message resolves to the same record", func(t *testing.T) {
		data := &DataMessage{
			Message:   "hello",
			GroupInfo: &GroupInfo{GroupID: "g1"},
		}
		direct := Item{Envelope: &Envelope{SourceNumber: "+1555", SourceName: "Alice", Timestamp: 100, DataMessage: data}}
		synced := Item{Envelope: &Envelope{SourceNumber: "+1555", SourceName: "Alice", Timestamp: 100, SyncMessage: &SyncMessage{SentMessage: data}}}

		a, ok := Normalize(direct)
		if !ok {
			t.Fatal("expected a message from the direct variant")
		}
		b, ok := Normalize(synced)
		if !ok {
			t.Fatal("expected a message from the synced variant")
		}
		if *a != *b {
			t.Errorf("variants normalized differently: %+v vs %+v", a, b)
		}
	})

	t.Run("quote becomes the reply anchor token", func(t *testing.T) {
		item := Item{Envelope: &Envelope{
			Timestamp: 200,
			DataMessage: &DataMessage{
				Message:   "/summary",
				GroupInfo: &GroupInfo{GroupID: "g1"},
				Quote:     &Quote{ID: 150},
			},
		}}

		msg, ok := Normalize(item)
		if !ok {
			t.Fatal("expected a message")
		}
		if !msg.IsReply() {
			t.Fatal("expected a reply")
		}
		if msg.QuoteID != TimeToken(150) {
			t.Errorf("expected quote token %q, got %q", TimeToken(150), msg.QuoteID)
		}
	})

	t.Run("missing sender fields default to N/A", func(t *testing.T) {
		item := Item{Envelope: &Envelope{
			Timestamp:   100,
			DataMessage: &DataMessage{Message: "hi"},
		}}

		msg, ok := Normalize(item)
		if !ok {
			t.Fatal("expected a message")
		}
		if msg.SourceNumber != "N/A" || msg.SourceName != "N/A" {
			t.Errorf("expected N/A defaults, got %q %q", msg.SourceNumber, msg.SourceName)
		}
	})

	t.Run("protocol noise yields no message", func(t *testing.T) {
		noise := []Item{
			{},                  // no envelope at all
			{Envelope: &Envelope{}},                                       // empty envelope
			{Envelope: &Envelope{SyncMessage: &SyncMessage{}}},            // sync without sentMessage
			{Envelope: &Envelope{SourceNumber: "+1555", Timestamp: 100}}, // receipt-like
		}
		for i, item := range noise {
			if msg, ok := Normalize(item); ok {
				t.Errorf("item %d: expected no message, got %+v", i, msg)
			}
		}
	})

	t.Run("decodes the relay wire format", func(t *testing.T) {
		raw := `[{"envelope":{"sourceNumber":"+1555","sourceName":"Alice","timestamp":1700000000000,
			"dataMessage":{"message":"/summary","groupInfo":{"groupId":"g1"},"quote":{"id":1699999990000}}}},
			{"envelope":{"timestamp":1700000000001,"receiptMessage":{"isDelivery":true}}}]`

		var items []Item
		if err := json.Unmarshal([]byte(raw), &items); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if len(items) != 2 {
			t.Fatalf("expected 2 items, got %d", len(items))
		}

		msg, ok := Normalize(items[0])
		if !ok {
			t.Fatal("expected a message from the first item")
		}
		if msg.Text != "/summary" || msg.QuoteID != TimeToken(1699999990000) {
			t.Errorf("unexpected record: %+v", msg)
		}

		if _, ok := Normalize(items[1]); ok {
			t.Error("receipt item should yield no message")
		}
	})
}

func TestTimeToken(t *testing.T) {
	t.Run("lexicographic order matches numeric order", func(t *testing.T) {
		pairs := [][2]int64{{0, 1}, {9, 10}, {999, 1000}, {1699999990000, 1700000000000}}
		for _, p := range pairs {
			if !(TimeToken(p[0]) < TimeToken(p[1])) {
				t.Errorf("token order broken for %d < %d: %q vs %q", p[0], p[1], TimeToken(p[0]), TimeToken(p[1]))
			}
		}
	})
}
