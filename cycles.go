package hsm

import (
	"fmt"
	"strings"
)

// DetectCycles walks containment edges depth-first from root and returns one
// message per re-entry into a state that is still on the open path. The
// branch that re-enters is not extended further.
func DetectCycles(g *Graph, root string) []string {
	if g == nil || !g.HasState(root) {
		return nil
	}
	return g.walkContainment(root, make(map[string]bool))
}

func (g *Graph) walkContainment(root string, visited map[string]bool) []string {
	var (
		cycles []string
		path   []string
		onPath = make(map[string]bool)
	)

	var visit func(name string)
	visit = func(name string) {
		if onPath[name] {
			cycles = append(cycles, formatCycle(append(pathFrom(path, name), name)...))
			return
		}
		if visited[name] {
			return
		}
		visited[name] = true
		onPath[name] = true
		path = append(path, name)

		if g.IsComposite(name) {
			for _, child := range g.children[name] {
				visit(child)
			}
		}

		path = path[:len(path)-1]
		onPath[name] = false
	}

	visit(root)
	return cycles
}

// pathFrom returns the suffix of path starting at name
func pathFrom(path []string, name string) []string {
	for i, p := range path {
		if p == name {
			return append([]string(nil), path[i:]...)
		}
	}
	return append([]string(nil), path...)
}

func formatCycle(states ...string) string {
	return fmt.Sprintf("cycle detected: %s", strings.Join(states, " -> "))
}
