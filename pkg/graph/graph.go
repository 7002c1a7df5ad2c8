// ABOUTME: Reference graph derived from resolved references
// ABOUTME: Reverse one-hop index, fixed-depth reference trees and dependency closure

package graph

import (
	"sort"

	"github.com/nainya/refgraph/pkg/document"
)

// TreeDepth bounds reference-tree expansion: direct references plus three more hops.
// Downstream reports assume this value.
const TreeDepth = 4

// Outgoing maps each document that declares references to its resolved target ids.
func Outgoing(docs []*document.Document) map[string][]string {
	out := make(map[string][]string, len(docs))
	for _, d := range docs {
		if d.References == nil {
			continue
		}
		out[d.DocID] = d.ReferencesResolved.IDs()
	}
	return out
}

// ReferencedBy inverts outgoing: for every cited id, the sorted, distinct ids of
// the documents citing it directly. Self-citations are ignored.
func ReferencedBy(outgoing map[string][]string) map[string][]string {
	sets := make(map[string]map[string]struct{})
	for citer, targets := range outgoing {
		for _, t := range targets {
			if t == citer {
				continue
			}
			s, ok := sets[t]
			if !ok {
				s = make(map[string]struct{})
				sets[t] = s
			}
			s[citer] = struct{}{}
		}
	}

	out := make(map[string][]string, len(sets))
	for t, s := range sets {
		out[t] = sortedKeys(s)
	}
	return out
}

// ReferenceTree returns every id reachable from docID within TreeDepth hops,
// sorted and distinct. docID itself is never included. Nil when nothing is reachable.
func ReferenceTree(docID string, outgoing map[string][]string) []string {
	seen := map[string]struct{}{docID: {}}
	found := make(map[string]struct{})

	var frontier []string
	for _, id := range outgoing[docID] {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		frontier = append(frontier, id)
	}

	for depth := 1; depth <= TreeDepth && len(frontier) > 0; depth++ {
		var next []string
		for _, id := range frontier {
			found[id] = struct{}{}
			if depth == TreeDepth {
				continue
			}
			for _, child := range outgoing[id] {
				if _, ok := seen[child]; ok {
					continue
				}
				seen[child] = struct{}{}
				next = append(next, child)
			}
		}
		frontier = next
	}

	if len(found) == 0 {
		return nil
	}
	return sortedKeys(found)
}

// BuildTrees computes ReferenceTree for every document with outgoing references.
func BuildTrees(outgoing map[string][]string) map[string][]string {
	trees := make(map[string][]string, len(outgoing))
	for id := range outgoing {
		if tree := ReferenceTree(id, outgoing); tree != nil {
			trees[id] = tree
		}
	}
	return trees
}

// Dependencies returns the full transitive closure of refsOf starting at docID,
// without a depth bound, sorted. docID itself is excluded.
func Dependencies(docID string, refsOf func(id string) []string) []string {
	seen := map[string]struct{}{docID: {}}
	deps := make(map[string]struct{})
	stack := append([]string(nil), refsOf(docID)...)

	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		deps[id] = struct{}{}
		stack = append(stack, refsOf(id)...)
	}
	return sortedKeys(deps)
}

func sortedKeys(s map[string]struct{}) []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
