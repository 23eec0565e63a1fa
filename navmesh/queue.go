package navmesh

import "container/heap"

// queueItem is one open path state in the search.
type queueItem struct {
	state *PathState
	cost  float64 // EstimatedMinimalOverallCost at insertion
	seq   uint64  // insertion order, breaks cost ties
	index int     // index in the heap
}

// priorityQueue implements heap.Interface ordered by cost, then insertion order.
type priorityQueue []*queueItem

func (pq priorityQueue) Len() int { return len(pq) }

func (pq priorityQueue) Less(i, j int) bool {
	if pq[i].cost != pq[j].cost {
		return pq[i].cost < pq[j].cost
	}
	return pq[i].seq < pq[j].seq
}

func (pq priorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

func (pq *priorityQueue) Push(x interface{}) {
	item := x.(*queueItem)
	item.index = len(*pq)
	*pq = append(*pq, item)
}

func (pq *priorityQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*pq = old[0 : n-1]
	return item
}

// openSet is the stable min-queue of path states used by one search.
type openSet struct {
	pq  priorityQueue
	seq uint64
}

func (o *openSet) push(s *PathState) {
	o.seq++
	heap.Push(&o.pq, &queueItem{state: s, cost: s.EstimatedMinimalOverallCost(), seq: o.seq})
}

func (o *openSet) pop() *PathState {
	return heap.Pop(&o.pq).(*queueItem).state
}

func (o *openSet) len() int { return o.pq.Len() }
