package game

// EventQueue holds deferred mutations (for example reverting the top-line
// flash). Each event carries the session generation it was scheduled in;
// events from an older generation are dropped instead of run.
type EventQueue struct {
	events []scheduledEvent
}

type scheduledEvent struct {
	due float64
	gen uint64
	fn  func()
}

// Schedule queues fn to run once the session clock reaches due.
func (q *EventQueue) Schedule(due float64, gen uint64, fn func()) {
	q.events = append(q.events, scheduledEvent{due: due, gen: gen, fn: fn})
}

// RunDue runs every event due at now that belongs to gen, in scheduling
// order, and drops stale ones. It returns the number of events run.
func (q *EventQueue) RunDue(now float64, gen uint64) int {
	if len(q.events) == 0 {
		return 0
	}
	var due []func()
	kept := q.events[:0]
	for _, e := range q.events {
		switch {
		case e.gen != gen:
			// stale
		case e.due <= now:
			due = append(due, e.fn)
		default:
			kept = append(kept, e)
		}
	}
	clear(q.events[len(kept):])
	q.events = kept

	// Run after compaction so callbacks may schedule new events.
	for _, fn := range due {
		fn()
	}
	return len(due)
}

// Len returns the number of pending events.
func (q *EventQueue) Len() int {
	return len(q.events)
}

// Clear drops every pending event.
func (q *EventQueue) Clear() {
	clear(q.events)
	q.events = q.events[:0]
}
