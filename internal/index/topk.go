// Encore - Playlist Continuation and Music Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/encore

package index

import "sort"

// topK keeps the k best neighbors seen so far in a min-heap whose root is
// the worst kept neighbor.
type topK struct {
	k    int
	heap []Neighbor
}

func newTopK(k int) *topK {
	return &topK{k: k, heap: make([]Neighbor, 0, k)}
}

func (t *topK) offer(n Neighbor) {
	if len(t.heap) < t.k {
		t.heap = append(t.heap, n)
		t.bubbleUp(len(t.heap) - 1)
		return
	}
	if !less(t.heap[0], n) {
		return
	}
	t.heap[0] = n
	t.bubbleDown(0)
}

// sorted returns the kept neighbors best first. The heap is consumed.
func (t *topK) sorted() []Neighbor {
	out := t.heap
	t.heap = nil
	sort.Slice(out, func(i, j int) bool { return less(out[j], out[i]) })
	return out
}

func (t *topK) bubbleUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !less(t.heap[i], t.heap[parent]) {
			return
		}
		t.heap[i], t.heap[parent] = t.heap[parent], t.heap[i]
		i = parent
	}
}

func (t *topK) bubbleDown(i int) {
	n := len(t.heap)
	for {
		smallest := i
		left, right := 2*i+1, 2*i+2
		if left < n && less(t.heap[left], t.heap[smallest]) {
			smallest = left
		}
		if right < n && less(t.heap[right], t.heap[smallest]) {
			smallest = right
		}
		if smallest == i {
			return
		}
		t.heap[i], t.heap[smallest] = t.heap[smallest], t.heap[i]
		i = smallest
	}
}
