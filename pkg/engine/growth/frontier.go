package growth

import (
	"github.com/golang/geo/s1"

	"github.com/lintang-b-s/terraroad/pkg/datastructure"
)

type entryState int

const (
	statePending entryState = iota
	stateEvaluating
	stateCommitted
	stateExhausted
)

func (s entryState) String() string {
	switch s {
	case statePending:
		return "pending"
	case stateEvaluating:
		return "evaluating"
	case stateCommitted:
		return "committed"
	case stateExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// frontierEntry is one growable stump: a node plus the heading growth should
// continue in. Lower priority grows first; seq breaks ties by creation order.
type frontierEntry struct {
	nodeID       datastructure.NodeID
	heading      s1.Angle
	branchBudget int
	priority     float64
	seq          int
	state        entryState
}

func (a *frontierEntry) less(b *frontierEntry) bool {
	if a.priority != b.priority {
		return a.priority < b.priority
	}
	return a.seq < b.seq
}

// frontierHeap is a binary min-heap of frontier entries.
type frontierHeap struct {
	heap []*frontierEntry
}

func newFrontierHeap() *frontierHeap {
	return &frontierHeap{heap: make([]*frontierEntry, 0)}
}

func (h *frontierHeap) parent(index int) int {
	return (index - 1) / 2
}

func (h *frontierHeap) leftChild(index int) int {
	return 2*index + 1
}

func (h *frontierHeap) rightChild(index int) int {
	return 2*index + 2
}

func (h *frontierHeap) heapifyUp(index int) {
	for index != 0 && h.heap[index].less(h.heap[h.parent(index)]) {
		h.heap[index], h.heap[h.parent(index)] = h.heap[h.parent(index)], h.heap[index]
		index = h.parent(index)
	}
}

func (h *frontierHeap) heapifyDown(index int) {
	smallest := index
	left := h.leftChild(index)
	right := h.rightChild(index)

	if left < len(h.heap) && h.heap[left].less(h.heap[smallest]) {
		smallest = left
	}
	if right < len(h.heap) && h.heap[right].less(h.heap[smallest]) {
		smallest = right
	}
	if smallest != index {
		h.heap[index], h.heap[smallest] = h.heap[smallest], h.heap[index]
		h.heapifyDown(smallest)
	}
}

func (h *frontierHeap) Size() int {
	return len(h.heap)
}

func (h *frontierHeap) Insert(entry *frontierEntry) {
	h.heap = append(h.heap, entry)
	h.heapifyUp(len(h.heap) - 1)
}

func (h *frontierHeap) ExtractMin() (*frontierEntry, bool) {
	if len(h.heap) == 0 {
		return nil, false
	}
	min := h.heap[0]
	h.heap[0] = h.heap[len(h.heap)-1]
	h.heap = h.heap[:len(h.heap)-1]
	h.heapifyDown(0)
	return min, true
}
