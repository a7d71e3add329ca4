package graph

import "container/list"

// ProcessingQueue is a FIFO of directories ready to be visited.
type ProcessingQueue struct {
	queue *list.List
}

// NewProcessingQueue creates an empty queue.
func NewProcessingQueue() *ProcessingQueue {
	return &ProcessingQueue{queue: list.New()}
}

// Enqueue adds a directory to the back of the queue.
func (pq *ProcessingQueue) Enqueue(dir string) {
	pq.queue.PushBack(dir)
}

// Dequeue removes and returns the directory at the front of the queue.
func (pq *ProcessingQueue) Dequeue() (string, bool) {
	if pq.queue.Len() == 0 {
		return "", false
	}
	elem := pq.queue.Front()
	pq.queue.Remove(elem)
	return elem.Value.(string), true
}

// IsEmpty returns true if the queue has no directories.
func (pq *ProcessingQueue) IsEmpty() bool {
	return pq.queue.Len() == 0
}

// CalculateInDegrees returns 1 for every directory with a configured
// ancestor and 0 otherwise.
func (f *Forest) CalculateInDegrees() map[string]int {
	inDegree := make(map[string]int, len(f.Nodes))
	for dir := range f.Nodes {
		inDegree[dir] = 0
	}
	for _, children := range f.Children {
		for _, child := range children {
			inDegree[child]++
		}
	}
	return inDegree
}

// TopologicalOrder returns every directory with ancestors before their
// descendants. Roots are visited in (depth, path) order.
func (f *Forest) TopologicalOrder() []string {
	inDegree := f.CalculateInDegrees()
	queue := NewProcessingQueue()
	for _, root := range f.Roots() {
		queue.Enqueue(root)
	}

	order := make([]string, 0, len(f.Nodes))
	for !queue.IsEmpty() {
		dir, _ := queue.Dequeue()
		order = append(order, dir)
		for _, child := range f.GetChildren(dir) {
			inDegree[child]--
			if inDegree[child] == 0 {
				queue.Enqueue(child)
			}
		}
	}
	return order
}
