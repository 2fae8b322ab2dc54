package report

import "sync"

// Event is one recorded Reporter call.
type Event struct {
	Kind string // "start", "complete", "progress", "error", "warn", "debug"
	Msg  string
	Err  error
}

// Recorder captures Reporter calls for inspection in tests. It is safe for
// concurrent use because asset synchronization may report from several
// workers at once.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) record(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *Recorder) Start(op string)    { r.record(Event{Kind: "start", Msg: op}) }
func (r *Recorder) Complete(op string) { r.record(Event{Kind: "complete", Msg: op}) }
func (r *Recorder) Warn(msg string)    { r.record(Event{Kind: "warn", Msg: msg}) }
func (r *Recorder) Debug(msg string)   { r.record(Event{Kind: "debug", Msg: msg}) }

func (r *Recorder) Progress(current, total int, op string) {
	r.record(Event{Kind: "progress", Msg: op})
}

func (r *Recorder) Error(msg string, err error) {
	r.record(Event{Kind: "error", Msg: msg, Err: err})
}

// Events returns a copy of everything recorded so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Count returns how many events of the given kind were recorded.
func (r *Recorder) Count(kind string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Kind == kind {
			n++
		}
	}
	return n
}
