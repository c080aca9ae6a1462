package graph

import (
	"github.com/HARIPRASAD-2003/form-builder/pkg/errors"
	"github.com/HARIPRASAD-2003/form-builder/pkg/models"
)

// edges maps a field id to its parent ids. Only ids of fields present in the
// collection are keys; parents may reference ids that are not.
type edges map[string][]string

func buildEdges(fields []models.Field) (edges, []string) {
	e := make(edges, len(fields))
	order := make([]string, 0, len(fields))
	for i := range fields {
		id := fields[i].ID
		if _, dup := e[id]; !dup {
			order = append(order, id)
		}
		e[id] = append(e[id], fields[i].ParentFields...)
	}
	return e, order
}

// HasCycle reports whether the parent-field graph contains at least one
// cycle, including a field listing itself directly or transitively.
func HasCycle(fields []models.Field) bool {
	return FindCycle(fields) != nil
}

// FindCycle returns one cycle as a path of field ids that starts and ends
// with the same id, or nil when the graph is acyclic.
// Every field is tried as a traversal root, so cycles in components that are
// unreachable from the first field are still found.
func FindCycle(fields []models.Field) []string {
	e, order := buildEdges(fields)
	return e.findCycle(order)
}

func (e edges) findCycle(roots []string) []string {
	visited := make(map[string]bool, len(e))
	inStack := make(map[string]bool)
	var stack []string
	var cycle []string

	var dfs func(id string) bool
	dfs = func(id string) bool {
		if inStack[id] {
			// close the loop from the first occurrence of id on the stack
			for i := len(stack) - 1; i >= 0; i-- {
				if stack[i] == id {
					cycle = append(append([]string{}, stack[i:]...), id)
					break
				}
			}
			return true
		}
		if visited[id] {
			return false
		}
		parents, known := e[id]
		if !known {
			// dangling reference
			visited[id] = true
			return false
		}

		inStack[id] = true
		stack = append(stack, id)
		for _, parent := range parents {
			if dfs(parent) {
				return true
			}
		}
		stack = stack[:len(stack)-1]
		inStack[id] = false
		visited[id] = true
		return false
	}

	for _, id := range roots {
		if id == "" || visited[id] {
			continue
		}
		if dfs(id) {
			return cycle
		}
	}
	return nil
}

// WouldCycle reports whether replacing the parents of fieldID with parents
// would make the graph cyclic. The fields slice is not modified.
func WouldCycle(fields []models.Field, fieldID string, parents []string) bool {
	return CandidateCycle(fields, fieldID, parents) != nil
}

// CandidateCycle is WouldCycle returning the offending path.
func CandidateCycle(fields []models.Field, fieldID string, parents []string) []string {
	e, order := buildEdges(fields)
	if _, ok := e[fieldID]; !ok {
		order = append(order, fieldID)
	}
	e[fieldID] = append([]string{}, parents...)
	// Only a cycle through fieldID can be introduced by the change, but an
	// already-cyclic graph is also unusable, so every root is checked.
	roots := append([]string{fieldID}, order...)
	return e.findCycle(roots)
}

// TopologicalOrder returns field ids ordered so that every field comes after
// all of its (present) parents, visiting roots in input order. A cyclic graph
// yields a *errors.CycleError carrying one cycle path.
func TopologicalOrder(fields []models.Field) ([]string, error) {
	e, order := buildEdges(fields)
	if cycle := e.findCycle(order); cycle != nil {
		return nil, errors.NewCycleError("", cycle)
	}

	placed := make(map[string]bool, len(order))
	result := make([]string, 0, len(order))
	var visit func(id string)
	visit = func(id string) {
		if placed[id] {
			return
		}
		parents, known := e[id]
		if !known {
			return
		}
		placed[id] = true
		for _, parent := range parents {
			visit(parent)
		}
		result = append(result, id)
	}
	for _, id := range order {
		visit(id)
	}
	return result, nil
}

// Dependents returns the ids of fields that list id among their parents,
// in input order.
func Dependents(fields []models.Field, id string) []string {
	var out []string
	for i := range fields {
		if fields[i].ID != id && fields[i].HasParent(id) {
			out = append(out, fields[i].ID)
		}
	}
	return out
}

// OnCycle returns the set of field ids that lie on some cycle or depend on a
// field that does. Such fields cannot be evaluated.
func OnCycle(fields []models.Field) map[string]bool {
	e, order := buildEdges(fields)
	const (
		unknown = iota
		visiting
		clean
		tainted
	)
	state := make(map[string]int, len(order))
	var visit func(id string) bool
	visit = func(id string) bool {
		switch state[id] {
		case visiting, tainted:
			return true
		case clean:
			return false
		}
		parents, known := e[id]
		if !known {
			state[id] = clean
			return false
		}
		state[id] = visiting
		bad := false
		for _, parent := range parents {
			if visit(parent) {
				bad = true
			}
		}
		if bad {
			state[id] = tainted
		} else {
			state[id] = clean
		}
		return bad
	}
	out := make(map[string]bool)
	for _, id := range order {
		if visit(id) {
			out[id] = true
		}
	}
	return out
}
