package ontology

import (
	"sort"
	"strings"
)

// Warning kinds.
const (
	WarnDependencyCycle = "dependency_cycle"
	WarnDuplicateSource = "duplicate_source"
)

// Warning is a non-fatal condition found while importing.
type Warning struct {
	Kind    string   `json:"kind"`
	Message string   `json:"message"`
	Sources []string `json:"sources,omitempty"`
}

// dependencyGraph maps each source to the sources defining the classes it
// names as superclasses.
func dependencyGraph(parsed []*Parsed) map[string]map[string]bool {
	definers := make(map[string][]string)
	for _, p := range parsed {
		for _, c := range p.Defines {
			definers[c] = append(definers[c], p.Source.Name)
		}
	}

	deps := make(map[string]map[string]bool, len(parsed))
	for _, p := range parsed {
		name := p.Source.Name
		deps[name] = make(map[string]bool)
		for _, c := range p.References {
			for _, d := range definers[c] {
				if d != name {
					deps[name][d] = true
				}
			}
		}
	}
	return deps
}

// ResolveOrder returns a safe import order: a source comes after every
// source defining a class it references as a superclass. Among sources that
// are ready at the same time the lexically smallest name goes first, so the
// order is reproducible. Sources left on a cycle are appended in lexical
// order with a dependency_cycle warning.
func ResolveOrder(parsed []*Parsed) ([]string, []Warning) {
	deps := dependencyGraph(parsed)

	indegree := make(map[string]int, len(deps))
	dependents := make(map[string][]string)
	for name, ds := range deps {
		indegree[name] = len(ds)
		for d := range ds {
			dependents[d] = append(dependents[d], name)
		}
	}

	var ready []string
	for name, n := range indegree {
		if n == 0 {
			ready = append(ready, name)
		}
	}
	sort.Strings(ready)

	order := make([]string, 0, len(deps))
	for len(ready) > 0 {
		next := ready[0]
		ready = ready[1:]
		order = append(order, next)
		delete(indegree, next)

		for _, dep := range dependents[next] {
			indegree[dep]--
			if indegree[dep] == 0 {
				i := sort.SearchStrings(ready, dep)
				ready = append(ready, "")
				copy(ready[i+1:], ready[i:])
				ready[i] = dep
			}
		}
	}

	var warnings []Warning
	if len(indegree) > 0 {
		var cyclic []string
		for name := range indegree {
			cyclic = append(cyclic, name)
		}
		sort.Strings(cyclic)
		order = append(order, cyclic...)
		warnings = append(warnings, Warning{
			Kind:    WarnDependencyCycle,
			Message: "circular superclass references among " + strings.Join(cyclic, ", ") + "; importing in name order",
			Sources: cyclic,
		})
	}
	return order, warnings
}
