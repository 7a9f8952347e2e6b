package event

import (
	"fmt"

	"go.uber.org/zap"
)

// Handler receives published events. A returned error or a panic is
// recorded as a Failure and never reaches the publisher.
type Handler func(Event) error

// Failure records one subscriber that errored or panicked.
type Failure struct {
	Subscriber string
	Seq        int
	Err        error
}

type subscription struct {
	id    int
	name  string
	kinds map[Kind]bool
	fn    Handler
}

func (s subscription) wants(k Kind) bool {
	return len(s.kinds) == 0 || s.kinds[k]
}

// Bus is the synchronous, append-only event stream of one battle. It is not
// safe for concurrent use; a battle is single-threaded.
type Bus struct {
	logger   *zap.Logger
	subs     []subscription
	history  []Event
	failures []Failure
	nextID   int
}

// NewBus creates an empty bus. A nil logger is replaced with a no-op logger.
func NewBus(logger *zap.Logger) *Bus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bus{logger: logger}
}

// Subscribe registers fn under name for the given kinds, or for every kind
// when none are given. Subscribers are invoked in registration order.
//
// Precondition: fn must be non-nil.
// Postcondition: Returns an id usable with Unsubscribe.
func (b *Bus) Subscribe(name string, fn Handler, kinds ...Kind) int {
	if fn == nil {
		panic("event.Bus.Subscribe: nil handler")
	}
	b.nextID++
	sub := subscription{id: b.nextID, name: name, fn: fn}
	if len(kinds) > 0 {
		sub.kinds = make(map[Kind]bool, len(kinds))
		for _, k := range kinds {
			sub.kinds[k] = true
		}
	}
	b.subs = append(b.subs, sub)
	return sub.id
}

// Unsubscribe removes the subscriber with id. Reports whether it existed.
func (b *Bus) Unsubscribe(id int) bool {
	for i, s := range b.subs {
		if s.id == id {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			return true
		}
	}
	return false
}

// Publish assigns the next sequence number, appends the event to the
// history and delivers it to every interested subscriber.
//
// Precondition: p must be non-nil.
// Postcondition: Returns the event as stored.
func (b *Bus) Publish(turn int, actor *Ref, p Payload) Event {
	ev := Event{
		Seq:     len(b.history) + 1,
		Turn:    turn,
		Kind:    p.Kind(),
		Actor:   actor,
		Payload: p,
	}
	b.history = append(b.history, ev)
	subs := make([]subscription, len(b.subs))
	copy(subs, b.subs)
	for _, s := range subs {
		if s.wants(ev.Kind) {
			b.deliver(s, ev)
		}
	}
	return ev
}

func (b *Bus) deliver(s subscription, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			b.fail(s, ev, fmt.Errorf("panic: %v", r))
		}
	}()
	if err := s.fn(ev); err != nil {
		b.fail(s, ev, err)
	}
}

func (b *Bus) fail(s subscription, ev Event, err error) {
	b.failures = append(b.failures, Failure{Subscriber: s.name, Seq: ev.Seq, Err: err})
	b.logger.Warn("event subscriber failed",
		zap.String("subscriber", s.name),
		zap.Int("seq", ev.Seq),
		zap.String("kind", string(ev.Kind)),
		zap.Error(err),
	)
}

// History returns a copy of every event published so far, in order.
func (b *Bus) History() []Event {
	out := make([]Event, len(b.history))
	copy(out, b.history)
	return out
}

// Since returns a copy of the events with Seq greater than seq.
func (b *Bus) Since(seq int) []Event {
	if seq < 0 {
		seq = 0
	}
	if seq >= len(b.history) {
		return nil
	}
	out := make([]Event, len(b.history)-seq)
	copy(out, b.history[seq:])
	return out
}

// LastSeq returns the sequence number of the most recent event, or 0.
func (b *Bus) LastSeq() int { return len(b.history) }

// Failures returns a copy of the recorded subscriber failures.
func (b *Bus) Failures() []Failure {
	out := make([]Failure, len(b.failures))
	copy(out, b.failures)
	return out
}
