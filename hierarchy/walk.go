package hierarchy

import (
	"context"
	"sort"

	"github.com/teranos/eavto/eav"
	"github.com/teranos/eavto/eav/types"
)

// activeObjects returns the distinct reference objects of the active facts
// (subject, predicate, *), sorted.
func activeObjects(ctx context.Context, r eav.Reader, subject, predicate string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for f, err := range r.Scan(ctx, eav.Pattern{Subject: subject, Predicate: predicate, ReferencesOnly: true}) {
		if err != nil {
			return nil, err
		}
		if !seen[f.Object.Value] {
			seen[f.Object.Value] = true
			out = append(out, f.Object.Value)
		}
	}
	sort.Strings(out)
	return out, nil
}

// activeSubjects returns the distinct subjects of active facts (*, predicate, object), sorted.
func activeSubjects(ctx context.Context, r eav.Reader, predicate, object string) ([]string, error) {
	obj := types.Ref(object)
	seen := make(map[string]bool)
	var out []string
	for f, err := range r.Scan(ctx, eav.Pattern{Predicate: predicate, Object: &obj}) {
		if err != nil {
			return nil, err
		}
		if !seen[f.Subject] {
			seen[f.Subject] = true
			out = append(out, f.Subject)
		}
	}
	sort.Strings(out)
	return out, nil
}

// ancestors walks edge breadth-first from starts and returns every node
// reached, nearest first. Start nodes are never reported. A node already
// visited ends its branch, so cycles terminate. Parents of one node are
// visited in lexical order.
func ancestors(ctx context.Context, r eav.Reader, edge string, starts []string) ([]string, error) {
	visited := make(map[string]bool, len(starts))
	queue := make([]string, 0, len(starts))
	for _, s := range starts {
		if !visited[s] {
			visited[s] = true
			queue = append(queue, s)
		}
	}

	var out []string
	for len(queue) > 0 {
		var next []string
		for _, node := range queue {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			parents, err := activeObjects(ctx, r, node, edge)
			if err != nil {
				return nil, err
			}
			for _, p := range parents {
				if visited[p] {
					continue
				}
				visited[p] = true
				out = append(out, p)
				next = append(next, p)
			}
		}
		queue = next
	}
	return out, nil
}

// latest returns the most recent active fact (subject, predicate, *) of
// any origin, or nil.
func latest(ctx context.Context, r eav.Reader, subject, predicate string) (*types.Fact, error) {
	var last *types.Fact
	for f, err := range r.Scan(ctx, eav.Pattern{Subject: subject, Predicate: predicate}) {
		if err != nil {
			return nil, err
		}
		last = &f
	}
	return last, nil
}
