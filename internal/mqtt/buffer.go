package mqtt

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// outbox queues property messages until the broker session is ready for
// them. It starts closed; the connect handler drains it and opens it, and a
// lost connection closes it again. While closed, the newest limit messages
// are kept in emit order.
type outbox struct {
	mu      sync.Mutex
	pending []Message
	limit   int
	dropped int
	open    bool
	log     logrus.FieldLogger
}

func newOutbox(limit int, log logrus.FieldLogger) *outbox {
	if limit <= 0 {
		limit = 1
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &outbox{limit: limit, log: log}
}

// hold queues msg unless the outbox is open and reports whether it did.
func (o *outbox) hold(msg Message) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.open {
		return false
	}
	if len(o.pending) == o.limit {
		if o.dropped == 0 {
			o.log.Warnf("outbox full (%d messages), dropping oldest", o.limit)
		}
		o.dropped++
		copy(o.pending, o.pending[1:])
		o.pending = o.pending[:len(o.pending)-1]
	}
	o.pending = append(o.pending, msg)
	return true
}

// take removes and returns everything queued. When nothing is queued it
// opens the outbox and returns nil, so a caller looping until nil sends
// every held message before any direct publish.
func (o *outbox) take() []Message {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.pending) == 0 {
		if o.dropped > 0 {
			o.log.Warnf("%d messages dropped while offline", o.dropped)
			o.dropped = 0
		}
		o.open = true
		return nil
	}
	batch := o.pending
	o.pending = nil
	return batch
}

// shut makes later messages queue again.
func (o *outbox) shut() {
	o.mu.Lock()
	o.open = false
	o.mu.Unlock()
}

func (o *outbox) isOpen() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.open
}

func (o *outbox) len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.pending)
}
