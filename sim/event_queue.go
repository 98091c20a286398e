package sim

import "container/heap"

// eventHeap implements heap.Interface ordered by (Time, seq).
// See canonical Golang example here: https://pkg.go.dev/container/heap#example-package-IntHeap
type eventHeap []Event

func (h eventHeap) Len() int { return len(h) }

func (h eventHeap) Less(i, j int) bool {
	if h[i].Time != h[j].Time {
		return h[i].Time < h[j].Time
	}
	return h[i].seq < h[j].seq
}

func (h eventHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *eventHeap) Push(x any) {
	*h = append(*h, x.(Event))
}

func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = Event{} // drop the entity pointer
	*h = old[0 : n-1]
	return item
}

// EventQueue is a min-heap of pending events with deterministic FIFO
// tie-breaking for equal timestamps.
type EventQueue struct {
	events  eventHeap
	nextSeq uint64
}

// NewEventQueue creates an empty event queue.
func NewEventQueue() *EventQueue {
	q := &EventQueue{events: make(eventHeap, 0)}
	heap.Init(&q.events)
	return q
}

// Schedule stamps ev with the next sequence number and inserts it in O(log n).
func (q *EventQueue) Schedule(ev Event) {
	q.nextSeq++
	ev.seq = q.nextSeq
	heap.Push(&q.events, ev)
}

// PopEarliest removes and returns the event with the smallest (Time, seq).
// ok is false when the queue is empty.
func (q *EventQueue) PopEarliest() (ev Event, ok bool) {
	if len(q.events) == 0 {
		return Event{}, false
	}
	return heap.Pop(&q.events).(Event), true
}

// Peek returns the next event without removing it.
func (q *EventQueue) Peek() (Event, bool) {
	if len(q.events) == 0 {
		return Event{}, false
	}
	return q.events[0], true
}

// Len returns the number of pending events.
func (q *EventQueue) Len() int {
	return len(q.events)
}

// Clear discards all pending events and returns how many were dropped.
// Sequence numbering continues so a reused queue never repeats a seq.
func (q *EventQueue) Clear() int {
	n := len(q.events)
	q.events = make(eventHeap, 0)
	return n
}
