package schema

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nbcatalog/nbcatalog/merge"
	"github.com/nbcatalog/nbcatalog/yamldoc"
)

// Kind selects which document schema Validate applies.
type Kind string

const (
	// KindQueryCatalog is a catalog of named queries with shared defaults.
	KindQueryCatalog Kind = "query_catalog"

	// KindNotebooklet is a notebooklet's metadata and output sections.
	KindNotebooklet Kind = "notebooklet"
)

// WarnMergeConflict prefixes warnings about ambiguous defaults merges.
// The current merge policy always lets the source entry win, so nothing
// emits it yet; it is reserved so hosts can filter warning categories
// without a breaking change if a stricter policy is ever added.
const WarnMergeConflict = "merge conflict"

// ErrNotMapping is returned when a document's root is not a mapping.
// This is the only condition Validate treats as a hard error.
var ErrNotMapping = errors.New("schema: document root is not a mapping")

// Issue is one validation finding, located by a dotted path into the
// document ("sources.list_host_logons.args.query").
type Issue struct {
	Path    string
	Message string
}

func (i Issue) String() string {
	return i.Path + ": " + i.Message
}

// Result holds every finding from one validation pass.
type Result struct {
	Errors   []Issue
	Warnings []Issue
}

// Valid reports whether the document had no errors. Warnings do not count.
func (r *Result) Valid() bool {
	return len(r.Errors) == 0
}

// Errf appends an error finding.
func (r *Result) Errf(path, format string, args ...any) {
	r.Errors = append(r.Errors, Issue{Path: path, Message: fmt.Sprintf(format, args...)})
}

// Warnf appends a warning finding.
func (r *Result) Warnf(path, format string, args ...any) {
	r.Warnings = append(r.Warnings, Issue{Path: path, Message: fmt.Sprintf(format, args...)})
}

// Validate checks doc against the schema selected by kind and returns all
// findings. It returns ErrNotMapping when the document root is not a
// mapping; every expected-shape violation lands in the Result instead.
func Validate(doc *yamldoc.Document, kind Kind) (*Result, error) {
	root, ok := doc.Root.(*yamldoc.Mapping)
	if !ok {
		return nil, ErrNotMapping
	}

	r := &Result{}
	switch kind {
	case KindQueryCatalog:
		validateCatalog(root, r)
	case KindNotebooklet:
		validateNotebooklet(root, r)
	default:
		return nil, fmt.Errorf("schema: unknown document kind %q", kind)
	}
	return r, nil
}

func validateCatalog(root *yamldoc.Mapping, r *Result) {
	meta := wantMapping(r, root, "metadata", "metadata", true)
	if meta != nil {
		if v, ok := meta.Get("version"); !ok {
			r.Errf("metadata.version", "required field is missing")
		} else if n, ok := v.(int); !ok || n <= 0 {
			r.Errf("metadata.version", "must be a positive integer, got %v", v)
		}
		wantString(r, meta, "description", "metadata.description", false)
		wantStringSeq(r, meta, "data_environments", "metadata.data_environments", true)
		wantStringSeq(r, meta, "data_families", "metadata.data_families", false)
		wantStringSeq(r, meta, "tags", "metadata.tags", false)
	}

	var defMeta *yamldoc.Mapping
	if defaults := wantMapping(r, root, "defaults", "defaults", false); defaults != nil {
		defMeta = wantMapping(r, defaults, "metadata", "defaults.metadata", false)
		wantMapping(r, defaults, "parameters", "defaults.parameters", false)
	}
	if defMeta == nil {
		defMeta = yamldoc.NewMapping()
	}

	sources := wantMapping(r, root, "sources", "sources", true)
	if sources == nil {
		return
	}
	if sources.Len() == 0 {
		r.Errf("sources", "must contain at least one query")
	}
	for _, dup := range sources.Duplicates() {
		r.Errf("sources."+dup.Key, "duplicate query name (line %d)", dup.Line)
	}
	for _, name := range sources.Keys() {
		path := "sources." + name
		if strings.TrimSpace(name) == "" {
			r.Errf("sources", "query name must not be empty")
			continue
		}
		v, _ := sources.Get(name)
		entry, ok := v.(*yamldoc.Mapping)
		if !ok {
			r.Errf(path, "must be a mapping, got %s", typeName(v))
			continue
		}

		wantString(r, entry, "description", path+".description", false)
		srcMeta := wantMapping(r, entry, "metadata", path+".metadata", false)
		if srcMeta == nil {
			srcMeta = yamldoc.NewMapping()
		}

		// Effective metadata must name at least one data family.
		effective := merge.Mappings(defMeta, srcMeta)
		if families := asStringSeq(effective, "data_families"); len(families) == 0 {
			r.Errf(path+".metadata.data_families",
				"effective metadata must include at least one data family")
		}

		args := wantMapping(r, entry, "args", path+".args", true)
		if args != nil {
			if q, ok := wantString(r, args, "query", path+".args.query", true); ok && strings.TrimSpace(q) == "" {
				r.Errf(path+".args.query", "must name a backing resource")
			}
		}

		if params := wantMapping(r, entry, "parameters", path+".parameters", false); params != nil {
			for _, pname := range params.Keys() {
				ppath := path + ".parameters." + pname
				pv, _ := params.Get(pname)
				pm, ok := pv.(*yamldoc.Mapping)
				if !ok {
					r.Errf(ppath, "must be a mapping, got %s", typeName(pv))
					continue
				}
				wantString(r, pm, "description", ppath+".description", false)
				wantString(r, pm, "type", ppath+".type", false)
			}
		}
	}
}

func validateNotebooklet(root *yamldoc.Mapping, r *Result) {
	meta := wantMapping(r, root, "metadata", "metadata", true)
	if meta != nil {
		if name, ok := wantString(r, meta, "name", "metadata.name", true); ok && strings.TrimSpace(name) == "" {
			r.Errf("metadata.name", "must not be empty")
		}
		wantString(r, meta, "description", "metadata.description", false)
		validateOptions(r, meta, "default_options", "metadata.default_options", true)
		validateOptions(r, meta, "other_options", "metadata.other_options", false)
		wantStringSeq(r, meta, "keywords", "metadata.keywords", false)
		if ets := wantStringSeq(r, meta, "entity_types", "metadata.entity_types", true); ets != nil && len(ets) == 0 {
			r.Errf("metadata.entity_types", "must not be empty")
		}
		wantStringSeq(r, meta, "req_providers", "metadata.req_providers", false)
	}

	output := wantMapping(r, root, "output", "output", true)
	if output == nil {
		return
	}
	if !output.Has("run") {
		r.Errf("output.run", "entry point section is missing")
	}
	for _, dup := range output.Duplicates() {
		r.Errf("output."+dup.Key, "duplicate section name (line %d)", dup.Line)
	}
	for _, name := range output.Keys() {
		path := "output." + name
		v, _ := output.Get(name)
		section, ok := v.(*yamldoc.Mapping)
		if !ok {
			r.Errf(path, "must be a mapping, got %s", typeName(v))
			continue
		}
		wantString(r, section, "title", path+".title", true)
		wantString(r, section, "text", path+".text", false)
		if hd, ok := section.Get("hd_level"); ok {
			if n, isInt := hd.(int); !isInt || n < 1 {
				r.Errf(path+".hd_level", "must be an integer >= 1, got %v", hd)
			}
		}
		if md, ok := section.Get("md"); ok {
			if _, isBool := md.(bool); !isBool {
				r.Errf(path+".md", "must be a boolean, got %s", typeName(md))
			}
		}
	}
}

// validateOptions checks an option list: each entry is either a bare string
// or a single-key mapping of option name to description.
func validateOptions(r *Result, m *yamldoc.Mapping, key, path string, required bool) {
	v, ok := m.Get(key)
	if !ok {
		if required {
			r.Errf(path, "required field is missing")
		}
		return
	}
	seq, ok := v.(yamldoc.Sequence)
	if !ok {
		r.Errf(path, "must be a sequence, got %s", typeName(v))
		return
	}
	for i, entry := range seq {
		epath := fmt.Sprintf("%s[%d]", path, i)
		switch t := entry.(type) {
		case string:
			if strings.TrimSpace(t) == "" {
				r.Errf(epath, "option name must not be empty")
			}
		case *yamldoc.Mapping:
			if t.Len() != 1 {
				r.Errf(epath, "option mapping must have exactly one key, got %d", t.Len())
				continue
			}
			name := t.Keys()[0]
			if strings.TrimSpace(name) == "" {
				r.Errf(epath, "option name must not be empty")
			}
			if desc, _ := t.Get(name); desc != nil {
				if _, isStr := desc.(string); !isStr {
					r.Errf(epath, "option description must be a string, got %s", typeName(desc))
				}
			}
		default:
			r.Errf(epath, "must be a string or a single-key mapping, got %s", typeName(entry))
		}
	}
}

// wantMapping fetches key as a *Mapping, reporting a missing required key
// or a wrong type. Returns nil when absent or mistyped.
func wantMapping(r *Result, m *yamldoc.Mapping, key, path string, required bool) *yamldoc.Mapping {
	v, ok := m.Get(key)
	if !ok {
		if required {
			r.Errf(path, "required field is missing")
		}
		return nil
	}
	child, ok := v.(*yamldoc.Mapping)
	if !ok {
		r.Errf(path, "must be a mapping, got %s", typeName(v))
		return nil
	}
	return child
}

// wantString fetches key as a string. The second return is false when the
// key is absent or mistyped.
func wantString(r *Result, m *yamldoc.Mapping, key, path string, required bool) (string, bool) {
	v, ok := m.Get(key)
	if !ok {
		if required {
			r.Errf(path, "required field is missing")
		}
		return "", false
	}
	s, ok := v.(string)
	if !ok {
		r.Errf(path, "must be a string, got %s", typeName(v))
		return "", false
	}
	return s, true
}

// wantStringSeq fetches key as a sequence of non-empty strings. Returns nil
// when the key is absent; returns a possibly empty slice when present.
func wantStringSeq(r *Result, m *yamldoc.Mapping, key, path string, required bool) []string {
	v, ok := m.Get(key)
	if !ok {
		if required {
			r.Errf(path, "required field is missing")
		}
		return nil
	}
	seq, ok := v.(yamldoc.Sequence)
	if !ok {
		r.Errf(path, "must be a sequence, got %s", typeName(v))
		return nil
	}
	out := make([]string, 0, len(seq))
	for i, e := range seq {
		s, ok := e.(string)
		if !ok || strings.TrimSpace(s) == "" {
			r.Errf(fmt.Sprintf("%s[%d]", path, i), "must be a non-empty string, got %v", e)
			continue
		}
		out = append(out, s)
	}
	return out
}

// asStringSeq reads a sequence of strings without reporting findings.
func asStringSeq(m *yamldoc.Mapping, key string) []string {
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

// typeName renders a value's kind for error messages.
func typeName(v any) string {
	switch v.(type) {
	case *yamldoc.Mapping:
		return "mapping"
	case yamldoc.Sequence:
		return "sequence"
	case nil:
		return "null"
	default:
		return fmt.Sprintf("%T", v)
	}
}
