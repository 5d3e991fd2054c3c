// Package notify delivers the panel's user-facing notifications: submitted,
// succeeded, failed. Delivery is fire-and-forget.
package notify

import (
	"sync"
	"time"
)

// Kind classifies a notification.
type Kind int

const (
	KindSubmit Kind = iota
	KindSuccess
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindSubmit:
		return "submit"
	case KindSuccess:
		return "success"
	case KindError:
		return "error"
	}
	return "unknown"
}

// Event is one delivered notification.
type Event struct {
	Kind    Kind
	Message string
	At      time.Time
}

// Notifier receives panel notifications. Implementations must not block for
// long and never report delivery failures to the caller.
type Notifier interface {
	NotifySubmit(msg string)
	NotifySuccess(msg string)
	NotifyError(msg string)
}

// Func adapts a plain function into a Notifier.
type Func func(Event)

func (f Func) NotifySubmit(msg string)  { f(Event{Kind: KindSubmit, Message: msg, At: time.Now()}) }
func (f Func) NotifySuccess(msg string) { f(Event{Kind: KindSuccess, Message: msg, At: time.Now()}) }
func (f Func) NotifyError(msg string)   { f(Event{Kind: KindError, Message: msg, At: time.Now()}) }

// Multi fans every notification out to each of its notifiers in order.
type Multi []Notifier

func (m Multi) NotifySubmit(msg string) {
	for _, n := range m {
		n.NotifySubmit(msg)
	}
}

func (m Multi) NotifySuccess(msg string) {
	for _, n := range m {
		n.NotifySuccess(msg)
	}
}

func (m Multi) NotifyError(msg string) {
	for _, n := range m {
		n.NotifyError(msg)
	}
}

// Recorder keeps every notification in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) record(k Kind, msg string) {
	r.mu.Lock()
	r.events = append(r.events, Event{Kind: k, Message: msg, At: time.Now()})
	r.mu.Unlock()
}

func (r *Recorder) NotifySubmit(msg string)  { r.record(KindSubmit, msg) }
func (r *Recorder) NotifySuccess(msg string) { r.record(KindSuccess, msg) }
func (r *Recorder) NotifyError(msg string)   { r.record(KindError, msg) }

// Events returns a copy of everything recorded so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}
