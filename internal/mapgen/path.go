package mapgen

import (
	"container/heap"

	"github.com/Faultbox/hexmap/internal/hexmap"
)

// pathNode is an A* search node over hex cells.
type pathNode struct {
	cell   *hexmap.Cell
	g      int // cost from start
	f      int // g + heuristic
	steps  int
	parent *pathNode
	index  int // index in heap
}

// pathHeap implements a priority queue for A*.
type pathHeap []*pathNode

func (h pathHeap) Len() int { return len(h) }

// Less breaks ties on cell index so searches are deterministic.
func (h pathHeap) Less(i, j int) bool {
	if h[i].f != h[j].f {
		return h[i].f < h[j].f
	}
	return h[i].cell.Index() < h[j].cell.Index()
}

func (h pathHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *pathHeap) Push(x any) {
	node := x.(*pathNode)
	node.index = len(*h)
	*h = append(*h, node)
}

func (h *pathHeap) Pop() any {
	old := *h
	n := len(old)
	node := old[n-1]
	old[n-1] = nil
	node.index = -1
	*h = old[:n-1]
	return node
}

// roadCost is the cost of a road leaving c through d, or false when the
// cell rules would reject it. Existing roads are cheap so routes merge.
func roadCost(c *hexmap.Cell, d hexmap.Direction) (int, bool) {
	n := c.Neighbor(d)
	if n == nil || n.IsUnderwater() || c.HasRiverThroughEdge(d) {
		return 0, false
	}
	diff := c.ElevationDifference(d)
	if diff > 1 {
		return 0, false
	}
	if c.HasRoadThroughEdge(d) {
		return 1, true
	}
	return 2 + 2*diff, true
}

// findRoadPath runs A* from start to goal over cells a road may cross and
// returns the route including both ends, or nil when none exists within
// maxSteps.
func findRoadPath(start, goal *hexmap.Cell, maxSteps int) []*hexmap.Cell {
	if start == nil || goal == nil || start == goal {
		return nil
	}
	target := goal.Coordinates()

	open := &pathHeap{}
	closed := make(map[*hexmap.Cell]bool)
	nodes := make(map[*hexmap.Cell]*pathNode)

	first := &pathNode{cell: start, f: start.Coordinates().DistanceTo(target)}
	heap.Push(open, first)
	nodes[start] = first

	for open.Len() > 0 {
		current := heap.Pop(open).(*pathNode)
		if current.cell == goal {
			return reconstructPath(current)
		}
		closed[current.cell] = true
		if current.steps >= maxSteps {
			continue
		}

		for _, d := range hexmap.Directions {
			cost, ok := roadCost(current.cell, d)
			if !ok {
				continue
			}
			next := current.cell.Neighbor(d)
			if closed[next] {
				continue
			}

			g := current.g + cost
			node, exists := nodes[next]
			if !exists {
				node = &pathNode{
					cell:   next,
					g:      g,
					f:      g + next.Coordinates().DistanceTo(target),
					steps:  current.steps + 1,
					parent: current,
				}
				nodes[next] = node
				heap.Push(open, node)
			} else if g < node.g {
				node.f += g - node.g
				node.g = g
				node.steps = current.steps + 1
				node.parent = current
				heap.Fix(open, node.index)
			}
		}
	}
	return nil
}

func reconstructPath(node *pathNode) []*hexmap.Cell {
	var path []*hexmap.Cell
	for ; node != nil; node = node.parent {
		path = append(path, node.cell)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// layRoad adds roads between consecutive path cells and returns how many
// edges were new.
func layRoad(path []*hexmap.Cell) int {
	added := 0
	for i := 1; i < len(path); i++ {
		d, ok := path[i-1].DirectionTo(path[i])
		if !ok || path[i-1].HasRoadThroughEdge(d) {
			continue
		}
		path[i-1].AddRoad(d)
		if path[i-1].HasRoadThroughEdge(d) {
			added++
		}
	}
	return added
}
