package lock

import "tinybase/pkg/concurrency/transaction"

// waitsForGraph is the directed waits-for graph: an edge t -> u means t is
// blocked waiting for a lock held by u. Edges are rebuilt from scratch on
// every acquisition-loop iteration and no traversal state is cached across
// calls — a cached result can hide a cycle that forms on the very next
// grant.
type waitsForGraph struct {
	edges map[*transaction.ID]map[*transaction.ID]bool
}

func newWaitsForGraph() *waitsForGraph {
	return &waitsForGraph{edges: make(map[*transaction.ID]map[*transaction.ID]bool)}
}

func (g *waitsForGraph) addEdge(waiter, holder *transaction.ID) {
	if g.edges[waiter] == nil {
		g.edges[waiter] = make(map[*transaction.ID]bool)
	}
	g.edges[waiter][holder] = true
}

// removeTransaction drops tid from the graph entirely, both as a waiter and
// as a holder any other waiter names.
func (g *waitsForGraph) removeTransaction(tid *transaction.ID) {
	delete(g.edges, tid)
	for waiter, holders := range g.edges {
		delete(holders, tid)
		if len(holders) == 0 {
			delete(g.edges, waiter)
		}
	}
}

// hasCycleFrom runs DFS starting at start, reporting whether any cycle is
// reachable from it. The caller is expected to rebuild the graph's edges
// immediately beforehand and to hold the lock manager's monitor.
func (g *waitsForGraph) hasCycleFrom(start *transaction.ID) bool {
	visited := make(map[*transaction.ID]bool)
	onStack := make(map[*transaction.ID]bool)
	return g.dfs(start, visited, onStack)
}

func (g *waitsForGraph) dfs(tid *transaction.ID, visited, onStack map[*transaction.ID]bool) bool {
	visited[tid] = true
	onStack[tid] = true
	defer delete(onStack, tid)

	for neighbor := range g.edges[tid] {
		if onStack[neighbor] {
			return true
		}
		if !visited[neighbor] {
			if g.dfs(neighbor, visited, onStack) {
				return true
			}
		}
	}
	return false
}
