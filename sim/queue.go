// Implements the WaitQueue, which holds the entities waiting at a station.

package sim

import (
	"fmt"
	"strings"
)

// WaitQueue is a FIFO line of entities waiting for a free server.
// There is no priority by category: the head is always the earliest enqueued.
type WaitQueue struct {
	queue []*Entity
}

// Enqueue adds an entity to the back of the wait queue.
func (wq *WaitQueue) Enqueue(e *Entity) {
	if e == nil {
		panic("Enqueue: entity must not be nil")
	}
	wq.queue = append(wq.queue, e)
}

func (wq *WaitQueue) String() string {
	var sb strings.Builder
	sb.WriteString("[")
	for i, val := range wq.queue {
		sb.WriteString(fmt.Sprint(val))
		if i < len(wq.queue)-1 {
			sb.WriteString(" ")
		}
	}
	sb.WriteString("]")
	return sb.String()
}

// Len returns the number of entities in the queue.
func (wq *WaitQueue) Len() int {
	return len(wq.queue)
}

// Dequeue removes and returns the entity at the front of the queue.
// Returns nil if the queue is empty.
func (wq *WaitQueue) Dequeue() *Entity {
	if len(wq.queue) == 0 {
		return nil
	}
	head := wq.queue[0]
	wq.queue[0] = nil
	wq.queue = wq.queue[1:]
	return head
}
