package node

import (
	"github.com/sirupsen/logrus"

	"github.com/sweeney/dual-relay/internal/logic"
)

// Emitter receives named values. Emit must not block.
type Emitter interface {
	Emit(property, value string)
}

// Publisher pushes pending button edges to the messaging side.
//
// Only the latest edge per button survives between flushes, so a press and
// release that both land inside one tick publish only the release.
type Publisher struct {
	out Emitter
	log logrus.FieldLogger
}

// NewPublisher creates a publisher emitting to out.
func NewPublisher(out Emitter, log logrus.FieldLogger) *Publisher {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Publisher{out: out, log: log.WithField("component", "publisher")}
}

// Flush emits at most one value per button and returns how many were sent.
func (p *Publisher) Flush(buttons []*logic.ButtonChannel) int {
	n := 0
	for _, b := range buttons {
		e, ok := b.TakePending()
		if !ok {
			continue
		}
		p.log.Debugf("%s=%v", ButtonProperty(e.Channel), e.Pressed)
		p.out.Emit(ButtonProperty(e.Channel), FormatBool(e.Pressed))
		n++
	}
	return n
}
