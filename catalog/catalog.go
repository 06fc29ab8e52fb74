package catalog

import (
	"fmt"
	"os"

	"github.com/nbcatalog/nbcatalog/merge"
	"github.com/nbcatalog/nbcatalog/schema"
	"github.com/nbcatalog/nbcatalog/yamldoc"
)

// Metadata describes the catalog as a whole.
type Metadata struct {
	// Version is the catalog schema version. Always positive in a valid
	// document.
	Version int

	// Description is free text about the catalog's contents.
	Description string

	// DataEnvironments lists the backends the catalog's queries run
	// against (e.g. LogAnalytics).
	DataEnvironments []string

	// DataFamilies lists the event-source families the catalog covers
	// (e.g. WindowsSecurity, AzureNetwork).
	DataFamilies []string

	// Tags are free-form labels for discovery.
	Tags []string
}

// Defaults is the merge base inherited by every source entry.
type Defaults struct {
	// Metadata is merged under each source's own metadata.
	Metadata map[string]any

	// Parameters is merged under each source's own parameters.
	Parameters map[string]any
}

// ParamSpec describes one query parameter.
type ParamSpec struct {
	// Description is free text shown to callers filling in the parameter.
	Description string

	// Type names the expected value type (str, datetime, int, ...).
	Type string

	// Default is the value used when the caller supplies none; nil means
	// the parameter is required.
	Default any
}

// Query is one catalog entry with defaults already applied.
type Query struct {
	// Name is the logical query name, unique within the catalog.
	Name string

	// Description is free text about what the query returns.
	Description string

	// Metadata is the effective metadata: catalog defaults deep-merged
	// under the entry's own metadata, entry values winning.
	Metadata map[string]any

	// QueryFile is the opaque backing-resource identifier from args.query.
	// Resolving it against a data store is the host's responsibility.
	QueryFile string

	// Args holds the full args mapping, QueryFile included.
	Args map[string]any

	// Parameters is the effective parameter spec, defaults applied.
	Parameters map[string]ParamSpec
}

// DataFamilies returns the entry's effective data families in document order.
func (q Query) DataFamilies() []string {
	return stringsAt(q.Metadata, "data_families")
}

// DataEnvironments returns the entry's effective data environments.
func (q Query) DataEnvironments() []string {
	return stringsAt(q.Metadata, "data_environments")
}

// Catalog is a fully loaded query catalog. It is immutable after Load.
type Catalog struct {
	Metadata Metadata
	Defaults Defaults

	// Queries holds the catalog's entries in document order. When the
	// document contains a duplicate query name only the first occurrence
	// appears here; the duplicate is reported as a validation error.
	Queries []Query
}

// Load reads and decodes the catalog file at path.
func Load(path string) (*Catalog, *schema.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("catalog: read file: %w", err)
	}
	c, res, err := Decode(data)
	if err != nil {
		return nil, res, fmt.Errorf("catalog: %s: %w", path, err)
	}
	return c, res, nil
}

// Decode parses, validates and builds a catalog from raw YAML. The returned
// Result carries every validation finding; the catalog is built best-effort
// even when findings exist, so callers choose which defects are fatal.
// The error is non-nil only for unparseable input or a non-mapping root.
func Decode(data []byte) (*Catalog, *schema.Result, error) {
	doc, err := yamldoc.Parse(data)
	if err != nil {
		return nil, nil, err
	}
	res, err := schema.Validate(doc, schema.KindQueryCatalog)
	if err != nil {
		return nil, nil, err
	}
	return build(doc.Root.(*yamldoc.Mapping)), res, nil
}

// build assembles the typed catalog from the raw tree. Entries too
// malformed to represent are skipped; validation has already reported them.
func build(root *yamldoc.Mapping) *Catalog {
	c := &Catalog{}

	if meta, ok := mappingAt(root, "metadata"); ok {
		if v, ok := meta.Get("version"); ok {
			if n, ok := v.(int); ok {
				c.Metadata.Version = n
			}
		}
		if s, ok := stringValue(meta, "description"); ok {
			c.Metadata.Description = s
		}
		c.Metadata.DataEnvironments = stringsAtMapping(meta, "data_environments")
		c.Metadata.DataFamilies = stringsAtMapping(meta, "data_families")
		c.Metadata.Tags = stringsAtMapping(meta, "tags")
	}

	if defaults, ok := mappingAt(root, "defaults"); ok {
		if dm, ok := mappingAt(defaults, "metadata"); ok {
			c.Defaults.Metadata = yamldoc.ToGo(dm).(map[string]any)
		}
		if dp, ok := mappingAt(defaults, "parameters"); ok {
			c.Defaults.Parameters = yamldoc.ToGo(dp).(map[string]any)
		}
	}

	sources, ok := mappingAt(root, "sources")
	if !ok {
		return c
	}
	for _, name := range sources.Keys() {
		v, _ := sources.Get(name)
		entry, ok := v.(*yamldoc.Mapping)
		if !ok {
			continue
		}
		c.Queries = append(c.Queries, buildQuery(name, entry, c.Defaults))
	}
	return c
}

func buildQuery(name string, entry *yamldoc.Mapping, defaults Defaults) Query {
	q := Query{Name: name}

	if s, ok := stringValue(entry, "description"); ok {
		q.Description = s
	}

	own := map[string]any{}
	if m, ok := mappingAt(entry, "metadata"); ok {
		own = yamldoc.ToGo(m).(map[string]any)
	}
	q.Metadata = merge.Maps(defaults.Metadata, own)

	if args, ok := mappingAt(entry, "args"); ok {
		q.Args = yamldoc.ToGo(args).(map[string]any)
		if s, ok := q.Args["query"].(string); ok {
			q.QueryFile = s
		}
	}

	ownParams := map[string]any{}
	if m, ok := mappingAt(entry, "parameters"); ok {
		ownParams = yamldoc.ToGo(m).(map[string]any)
	}
	effective := merge.Maps(defaults.Parameters, ownParams)
	if len(effective) > 0 {
		q.Parameters = make(map[string]ParamSpec, len(effective))
		for pname, pv := range effective {
			pm, ok := pv.(map[string]any)
			if !ok {
				continue
			}
			spec := ParamSpec{Default: pm["default"]}
			if s, ok := pm["description"].(string); ok {
				spec.Description = s
			}
			if s, ok := pm["type"].(string); ok {
				spec.Type = s
			}
			q.Parameters[pname] = spec
		}
	}
	return q
}

func mappingAt(m *yamldoc.Mapping, key string) (*yamldoc.Mapping, bool) {
	v, ok := m.Get(key)
	if !ok {
		return nil, false
	}
	child, ok := v.(*yamldoc.Mapping)
	return child, ok
}

func stringValue(m *yamldoc.Mapping, key string) (string, bool) {
	v, ok := m.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func stringsAtMapping(m *yamldoc.Mapping, key string) []string {
	v, ok := m.Get(key)
	if !ok {
		return nil
	}
	seq, ok := v.(yamldoc.Sequence)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(seq))
	for _, e := range seq {
		if s, ok := e.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// stringsAt reads a []string-ish value out of a plain merged metadata map.
func stringsAt(m map[string]any, key string) []string {
	seq, ok := m[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(seq))
	for _, e := range seq {
		if s, ok := e.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
