package maxflow

// GoldbergTarjanEngine is the highest-label push-relabel algorithm with the
// gap heuristic and periodic global relabeling — the [SUPPLEMENT] detail
// spec.md's C8 names but leaves unspecified. Global relabeling recomputes
// exact distance labels via a reverse BFS from the sink every
// O(numVertices) discharges; the gap heuristic, triggered whenever a label
// value empties out of the active-vertex population, relabels every vertex
// above the gap to numVertices+1 in one pass, pruning work that would
// otherwise rediscover the same unreachable labels one push at a time.
type GoldbergTarjanEngine struct{}

func (GoldbergTarjanEngine) MaxFlow(n *Network, source, sink int) Result {
	pr := newPushRelabelState(n, source, sink)
	pr.run()
	return Result{MaxFlow: pr.excess[sink], ReachableFromSource: reachabilityFromSource(n, source)}
}

type pushRelabelState struct {
	n              *Network
	source, sink   int
	height         []int
	excess         []int64
	seen           []int // next edge index to try per vertex, for the discharge loop
	countAtHeight  []int // number of vertices currently at each height value, sized 2n+1
	activeByHeight [][]int
	maxActive      int
	sinceRelabel   int
}

func newPushRelabelState(n *Network, source, sink int) *pushRelabelState {
	v := n.NumVertices()
	pr := &pushRelabelState{
		n: n, source: source, sink: sink,
		height: make([]int, v),
		excess: make([]int64, v),
		seen:   make([]int, v),
	}
	pr.countAtHeight = make([]int, 2*v+2)
	pr.activeByHeight = make([][]int, 2*v+2)
	pr.height[source] = v
	pr.countAtHeight[0] = v - 1
	pr.countAtHeight[v]++

	for i := range n.adj[source] {
		e := &n.adj[source][i]
		cap := n.residual(source, i)
		if cap > 0 {
			n.push(source, i, cap)
			pr.excess[e.To] += cap
			if e.To != sink && e.To != source {
				pr.enqueue(e.To)
			}
		}
	}
	return pr
}

func (pr *pushRelabelState) enqueue(v int) {
	h := pr.height[v]
	pr.activeByHeight[h] = append(pr.activeByHeight[h], v)
	if h > pr.maxActive {
		pr.maxActive = h
	}
}

func (pr *pushRelabelState) run() {
	v := pr.n.NumVertices()
	for pr.maxActive >= 0 {
		bucket := pr.activeByHeight[pr.maxActive]
		if len(bucket) == 0 {
			pr.maxActive--
			continue
		}
		u := bucket[len(bucket)-1]
		pr.activeByHeight[pr.maxActive] = bucket[:len(bucket)-1]
		if u == pr.source || u == pr.sink || pr.excess[u] == 0 {
			continue
		}
		pr.discharge(u)

		pr.sinceRelabel++
		if pr.sinceRelabel >= v {
			pr.globalRelabel()
			pr.sinceRelabel = 0
		}
	}
}

func (pr *pushRelabelState) discharge(u int) {
	v := pr.n.NumVertices()
	for pr.excess[u] > 0 {
		if pr.seen[u] >= len(pr.n.adj[u]) {
			pr.relabel(u)
			pr.seen[u] = 0
			if pr.height[u] >= 2*v {
				return // no path to sink remains; excess stays parked.
			}
			continue
		}
		i := pr.seen[u]
		e := &pr.n.adj[u][i]
		if pr.n.residual(u, i) > 0 && pr.height[u] == pr.height[e.To]+1 {
			amount := min64(pr.excess[u], pr.n.residual(u, i))
			pr.n.push(u, i, amount)
			pr.excess[u] -= amount
			pr.excess[e.To] += amount
			if e.To != pr.source && e.To != pr.sink && pr.excess[e.To] == amount {
				pr.enqueue(e.To)
			}
		} else {
			pr.seen[u]++
		}
	}
}

func (pr *pushRelabelState) relabel(u int) {
	v := pr.n.NumVertices()
	oldHeight := pr.height[u]
	minHeight := 2 * v
	for i := range pr.n.adj[u] {
		if pr.n.residual(u, i) > 0 {
			if h := pr.height[pr.n.adj[u][i].To] + 1; h < minHeight {
				minHeight = h
			}
		}
	}
	pr.countAtHeight[oldHeight]--
	pr.gapHeuristic(oldHeight)
	pr.height[u] = minHeight
	if minHeight <= 2*v {
		pr.countAtHeight[minHeight]++
	}
}

// gapHeuristic: if no vertex remains at the height that just emptied, every
// vertex strictly above it can never reach the sink again and is relabeled
// to n+1 in one pass, rather than being relabeled one discharge at a time.
func (pr *pushRelabelState) gapHeuristic(emptiedHeight int) {
	if emptiedHeight == 0 || pr.countAtHeight[emptiedHeight] > 0 {
		return
	}
	v := pr.n.NumVertices()
	for u := 0; u < v; u++ {
		if pr.height[u] > emptiedHeight && pr.height[u] < v {
			pr.countAtHeight[pr.height[u]]--
			pr.height[u] = v + 1
			pr.countAtHeight[v+1]++
		}
	}
}

// globalRelabel recomputes exact distance-to-sink labels via reverse BFS,
// the periodic correction that keeps amortised relabel work linear.
func (pr *pushRelabelState) globalRelabel() {
	v := pr.n.NumVertices()
	newHeight := make([]int, v)
	for i := range newHeight {
		newHeight[i] = 2 * v
	}
	newHeight[pr.sink] = 0
	queue := []int{pr.sink}
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		for w := 0; w < v; w++ {
			if newHeight[w] != 2*v {
				continue
			}
			if hasResidualEdge(pr.n, w, u) {
				newHeight[w] = newHeight[u] + 1
				queue = append(queue, w)
			}
		}
	}
	newHeight[pr.source] = v

	for i := range pr.countAtHeight {
		pr.countAtHeight[i] = 0
	}
	pr.activeByHeight = make([][]int, 2*v+2)
	pr.maxActive = 0
	for u := 0; u < v; u++ {
		pr.height[u] = newHeight[u]
		pr.countAtHeight[newHeight[u]]++
		pr.seen[u] = 0
		if u != pr.source && u != pr.sink && pr.excess[u] > 0 {
			pr.enqueue(u)
		}
	}
}

func hasResidualEdge(n *Network, from, to int) bool {
	for i := range n.adj[from] {
		e := &n.adj[from][i]
		if e.To == to && n.residual(from, i) > 0 {
			return true
		}
	}
	return false
}
