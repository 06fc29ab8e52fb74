package catalog

// QueryIndex is a read-only view over a loaded catalog. Nothing is added,
// removed or mutated after construction, so an index can be shared across
// goroutines without locking. Hosts that reload catalogs build a fresh
// index and swap a single reference (see the reload package).
type QueryIndex struct {
	entries []Query
	byName  map[string]int

	// Catalog-level tags, used when an entry's effective metadata does not
	// set its own. The document's metadata section applies file-wide.
	families     []string
	environments []string
}

// NewQueryIndex builds an index over c's queries. Entries keep document
// order; a name that somehow appears twice keeps its first entry only.
func NewQueryIndex(c *Catalog) *QueryIndex {
	ix := &QueryIndex{
		entries:      make([]Query, 0, len(c.Queries)),
		byName:       make(map[string]int, len(c.Queries)),
		families:     c.Metadata.DataFamilies,
		environments: c.Metadata.DataEnvironments,
	}
	for _, q := range c.Queries {
		if _, seen := ix.byName[q.Name]; seen {
			continue
		}
		ix.byName[q.Name] = len(ix.entries)
		ix.entries = append(ix.entries, q)
	}
	return ix
}

// Len returns the number of indexed queries.
func (ix *QueryIndex) Len() int {
	return len(ix.entries)
}

// Names returns all query names in document order.
func (ix *QueryIndex) Names() []string {
	out := make([]string, len(ix.entries))
	for i, q := range ix.entries {
		out[i] = q.Name
	}
	return out
}

// Lookup returns the query with the given name. Absence is an expected,
// recoverable case and is reported by the boolean, not an error.
func (ix *QueryIndex) Lookup(name string) (Query, bool) {
	i, ok := ix.byName[name]
	if !ok {
		return Query{}, false
	}
	return ix.entries[i], true
}

// ByFamily returns the queries whose effective metadata lists family, in
// document order. Entries with no families of their own inherit the
// catalog-level data_families.
func (ix *QueryIndex) ByFamily(family string) []Query {
	var out []Query
	for _, q := range ix.entries {
		fams := q.DataFamilies()
		if len(fams) == 0 {
			fams = ix.families
		}
		if contains(fams, family) {
			out = append(out, q)
		}
	}
	return out
}

// ByEnvironment returns the queries whose effective metadata lists env, in
// document order. Entries with no environments of their own inherit the
// catalog-level data_environments.
func (ix *QueryIndex) ByEnvironment(env string) []Query {
	var out []Query
	for _, q := range ix.entries {
		envs := q.DataEnvironments()
		if len(envs) == 0 {
			envs = ix.environments
		}
		if contains(envs, env) {
			out = append(out, q)
		}
	}
	return out
}

func contains(xs []string, want string) bool {
	for _, x := range xs {
		if x == want {
			return true
		}
	}
	return false
}
