package mqtt

import (
	"testing"
)

func TestOutboxTakeEmptyOpens(t *testing.T) {
	o := newOutbox(10, nil)
	if o.isOpen() {
		t.Fatal("new outbox should start closed")
	}
	if got := o.take(); got != nil {
		t.Errorf("expected nil from empty take, got %d items", len(got))
	}
	if !o.isOpen() {
		t.Error("empty take should open the outbox")
	}
	if o.hold(Message{Topic: "t"}) {
		t.Error("open outbox should not hold messages")
	}
}

func TestOutboxHoldAndTake(t *testing.T) {
	o := newOutbox(10, nil)
	for i := 0; i < 5; i++ {
		if !o.hold(Message{Topic: "t", Payload: []byte{byte(i)}}) {
			t.Fatalf("message %d not held", i)
		}
	}

	got := o.take()
	if len(got) != 5 {
		t.Fatalf("expected 5 items, got %d", len(got))
	}
	for i := 0; i < 5; i++ {
		if got[i].Payload[0] != byte(i) {
			t.Errorf("item %d: expected payload %d, got %d", i, i, got[i].Payload[0])
		}
	}
	if o.isOpen() {
		t.Error("take with messages should leave the outbox closed")
	}
	if got := o.take(); got != nil {
		t.Errorf("expected nil from second take, got %d items", len(got))
	}
}

func TestOutboxDropsOldest(t *testing.T) {
	limit := 5
	o := newOutbox(limit, nil)

	// 0..7 held, the newest 5 (3..7) survive
	for i := 0; i < limit+3; i++ {
		o.hold(Message{Topic: "t", Payload: []byte{byte(i)}})
	}
	if o.len() != limit {
		t.Fatalf("expected len %d, got %d", limit, o.len())
	}

	got := o.take()
	for i := 0; i < limit; i++ {
		want := byte(i + 3)
		if got[i].Payload[0] != want {
			t.Errorf("item %d: expected payload %d, got %d", i, want, got[i].Payload[0])
		}
	}
	if o.take() != nil || o.dropped != 0 {
		t.Errorf("opening should clear the drop count, got %d", o.dropped)
	}
}

func TestOutboxShutHoldsAgain(t *testing.T) {
	o := newOutbox(3, nil)
	o.take()
	o.shut()
	if !o.hold(Message{Topic: "a"}) {
		t.Fatal("shut outbox should hold")
	}
	if o.len() != 1 {
		t.Errorf("expected len 1, got %d", o.len())
	}
}

func TestOutboxPreservesFields(t *testing.T) {
	o := newOutbox(10, nil)
	o.hold(Message{
		Topic:    "homie/dual-relay/dual/button0",
		Payload:  []byte(`true`),
		QoS:      1,
		Retained: true,
	})

	got := o.take()
	if len(got) != 1 {
		t.Fatalf("expected 1 item, got %d", len(got))
	}
	if got[0].Topic != "homie/dual-relay/dual/button0" || string(got[0].Payload) != `true` {
		t.Errorf("got %s=%s", got[0].Topic, got[0].Payload)
	}
	if got[0].QoS != 1 || !got[0].Retained {
		t.Errorf("QoS/Retained: got %d/%v", got[0].QoS, got[0].Retained)
	}
}

func TestOutboxZeroLimit(t *testing.T) {
	o := newOutbox(0, nil)
	o.hold(Message{Topic: "a"})
	o.hold(Message{Topic: "b"})
	if o.len() != 1 {
		t.Errorf("expected limit clamped to 1, got len %d", o.len())
	}
}
