package notebooklet

import (
	"sort"
	"strings"

	"github.com/nbcatalog/nbcatalog/schema"
)

// Index is a read-only view over a set of loaded notebooklet specs.
// Nothing is added, removed or mutated after construction, so an index can
// be shared across goroutines without locking; hosts that reload specs
// build a fresh index and swap a single reference (see the reload package).
type Index struct {
	entries []*Spec
	byName  map[string]int
	byTerm  map[string][]int
}

// NewIndex builds an index over specs. Insertion order is kept. A name that
// appears twice keeps its first spec only and is reported as an error in
// the Result; specs sharing a description verbatim are reported as a
// warning, since that usually indicates copy-paste drift in the source
// config rather than intent.
func NewIndex(specs ...*Spec) (*Index, *schema.Result) {
	res := &schema.Result{}
	ix := &Index{
		entries: make([]*Spec, 0, len(specs)),
		byName:  make(map[string]int, len(specs)),
		byTerm:  make(map[string][]int),
	}

	descSeen := make(map[string]string) // description -> first spec name
	for _, s := range specs {
		name := s.Metadata.Name
		if _, dup := ix.byName[name]; dup {
			res.Errf("metadata.name", "duplicate notebooklet name %q", name)
			continue
		}
		pos := len(ix.entries)
		ix.byName[name] = pos
		ix.entries = append(ix.entries, s)

		if desc := s.Metadata.Description; desc != "" {
			if first, seen := descSeen[desc]; seen {
				res.Warnf("metadata.description",
					"%q duplicates the description of %q", name, first)
			} else {
				descSeen[desc] = name
			}
		}

		seenTerm := make(map[string]bool)
		for _, term := range s.SearchTerms() {
			if seenTerm[term] {
				continue
			}
			seenTerm[term] = true
			ix.byTerm[term] = append(ix.byTerm[term], pos)
		}
	}
	return ix, res
}

// Len returns the number of indexed specs.
func (ix *Index) Len() int {
	return len(ix.entries)
}

// Names returns the notebooklet names in insertion order.
func (ix *Index) Names() []string {
	out := make([]string, len(ix.entries))
	for i, s := range ix.entries {
		out[i] = s.Metadata.Name
	}
	return out
}

// Lookup returns the spec with the given name. Absence is an expected,
// recoverable case and is reported by the boolean, not an error.
func (ix *Index) Lookup(name string) (*Spec, bool) {
	i, ok := ix.byName[name]
	if !ok {
		return nil, false
	}
	return ix.entries[i], true
}

// ByEntityType returns the specs that analyze the given entity type,
// in insertion order.
func (ix *Index) ByEntityType(entity string) []*Spec {
	var out []*Spec
	for _, s := range ix.entries {
		for _, et := range s.Metadata.EntityTypes {
			if strings.EqualFold(et, entity) {
				out = append(out, s)
				break
			}
		}
	}
	return out
}

// ByKeyword returns the specs listing the given keyword, in insertion order.
func (ix *Index) ByKeyword(keyword string) []*Spec {
	var out []*Spec
	for _, s := range ix.entries {
		for _, k := range s.Metadata.Keywords {
			if strings.EqualFold(k, keyword) {
				out = append(out, s)
				break
			}
		}
	}
	return out
}

// Find returns the specs whose search terms match any of the given terms,
// ordered by number of matching terms, most hits first; ties keep insertion
// order. Matching is case-insensitive.
func (ix *Index) Find(terms ...string) []*Spec {
	hits := make(map[int]int)
	for _, term := range terms {
		for _, pos := range ix.byTerm[strings.ToLower(term)] {
			hits[pos]++
		}
	}

	positions := make([]int, 0, len(hits))
	for pos := range hits {
		positions = append(positions, pos)
	}
	sort.Slice(positions, func(i, j int) bool {
		if hits[positions[i]] != hits[positions[j]] {
			return hits[positions[i]] > hits[positions[j]]
		}
		return positions[i] < positions[j]
	})

	out := make([]*Spec, len(positions))
	for i, pos := range positions {
		out[i] = ix.entries[pos]
	}
	return out
}
