package notebooklet

import (
	"fmt"
	"os"
	"strings"

	"github.com/nbcatalog/nbcatalog/schema"
	"github.com/nbcatalog/nbcatalog/yamldoc"
)

// Option is one notebooklet option in normalized form.
type Option struct {
	// Name is the option identifier.
	Name string

	// Description is free text about what enabling the option does.
	// Empty when the YAML used the bare-string form.
	Description string
}

// ProviderRequirement declares which backends a notebooklet needs. Any one
// of the alternatives satisfies the requirement.
type ProviderRequirement struct {
	Alternatives []string
}

// Satisfied reports whether any alternative appears in available.
func (p ProviderRequirement) Satisfied(available []string) bool {
	for _, alt := range p.Alternatives {
		for _, have := range available {
			if strings.EqualFold(alt, have) {
				return true
			}
		}
	}
	return false
}

func (p ProviderRequirement) String() string {
	return strings.Join(p.Alternatives, "|")
}

// OutputSection is one named block of rendered output.
type OutputSection struct {
	// Name is the section key; "run" is the entry point section.
	Name string

	// Title is the section heading.
	Title string

	// HdLevel is the heading level, 1-based. Zero means unset.
	HdLevel int

	// Text is the section body; may contain markdown when Markdown is set.
	Text string

	// Markdown marks Text as markdown rather than plain text.
	Markdown bool
}

// Metadata describes one notebooklet.
type Metadata struct {
	// Name uniquely identifies the notebooklet.
	Name string

	// Description is a short summary shown in listings.
	Description string

	// DefaultOptions run unless the caller opts out.
	DefaultOptions []Option

	// OtherOptions are available but off by default.
	OtherOptions []Option

	// Keywords support discovery searches.
	Keywords []string

	// EntityTypes lists the entity kinds this notebooklet analyzes
	// (host, account, ip_address, ...). Never empty in a valid spec.
	EntityTypes []string

	// ReqProviders lists the backend providers needed to run.
	ReqProviders []ProviderRequirement
}

// Spec is a fully loaded notebooklet spec. Immutable after Load.
type Spec struct {
	Metadata Metadata

	// Output holds the output sections in document order. A valid spec
	// always includes a section named "run".
	Output []OutputSection
}

// Section returns the output section with the given name.
func (s *Spec) Section(name string) (OutputSection, bool) {
	for _, sec := range s.Output {
		if sec.Name == name {
			return sec, true
		}
	}
	return OutputSection{}, false
}

// AllOptions returns the default options followed by the other options,
// de-duplicated by name, order kept.
func (s *Spec) AllOptions() []Option {
	seen := make(map[string]bool)
	var out []Option
	for _, opt := range append(append([]Option{}, s.Metadata.DefaultOptions...), s.Metadata.OtherOptions...) {
		if seen[opt.Name] {
			continue
		}
		seen[opt.Name] = true
		out = append(out, opt)
	}
	return out
}

// SearchTerms returns the lower-cased terms this spec is discoverable by:
// its name, keywords and entity types.
func (s *Spec) SearchTerms() []string {
	terms := make([]string, 0, 1+len(s.Metadata.Keywords)+len(s.Metadata.EntityTypes))
	terms = append(terms, strings.ToLower(s.Metadata.Name))
	for _, k := range s.Metadata.Keywords {
		terms = append(terms, strings.ToLower(k))
	}
	for _, e := range s.Metadata.EntityTypes {
		terms = append(terms, strings.ToLower(e))
	}
	return terms
}

// OptionsDoc renders a markdown block documenting the notebooklet's
// default and other options, suitable for appending to host-side help text.
func (s *Spec) OptionsDoc() string {
	var b strings.Builder
	b.WriteString("Default Options\n---------------\n")
	writeOptionList(&b, s.Metadata.DefaultOptions)
	if len(s.Metadata.OtherOptions) > 0 {
		b.WriteString("\nOther Options\n-------------\n")
		writeOptionList(&b, s.Metadata.OtherOptions)
	}
	return b.String()
}

func writeOptionList(b *strings.Builder, opts []Option) {
	if len(opts) == 0 {
		b.WriteString("None\n")
		return
	}
	for _, opt := range opts {
		if opt.Description == "" {
			fmt.Fprintf(b, "- %s\n", opt.Name)
			continue
		}
		fmt.Fprintf(b, "- %s: %s\n", opt.Name, opt.Description)
	}
}

// Load reads and decodes the notebooklet spec at path.
func Load(path string) (*Spec, *schema.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("notebooklet: read file: %w", err)
	}
	s, res, err := Decode(data)
	if err != nil {
		return nil, res, fmt.Errorf("notebooklet: %s: %w", path, err)
	}
	return s, res, nil
}

// Decode parses, validates and builds a spec from raw YAML. The returned
// Result carries every validation finding; the spec is built best-effort so
// callers choose which defects are fatal. The error is non-nil only for
// unparseable input or a non-mapping root.
func Decode(data []byte) (*Spec, *schema.Result, error) {
	doc, err := yamldoc.Parse(data)
	if err != nil {
		return nil, nil, err
	}
	res, err := schema.Validate(doc, schema.KindNotebooklet)
	if err != nil {
		return nil, nil, err
	}
	return build(doc.Root.(*yamldoc.Mapping)), res, nil
}

func build(root *yamldoc.Mapping) *Spec {
	s := &Spec{}

	if meta, ok := mappingAt(root, "metadata"); ok {
		s.Metadata.Name, _ = stringValue(meta, "name")
		s.Metadata.Description, _ = stringValue(meta, "description")
		s.Metadata.DefaultOptions = buildOptions(meta, "default_options")
		s.Metadata.OtherOptions = buildOptions(meta, "other_options")
		s.Metadata.Keywords = stringsAtMapping(meta, "keywords")
		s.Metadata.EntityTypes = stringsAtMapping(meta, "entity_types")
		for _, req := range stringsAtMapping(meta, "req_providers") {
			s.Metadata.ReqProviders = append(s.Metadata.ReqProviders,
				parseProviderRequirement(req))
		}
	}

	output, ok := mappingAt(root, "output")
	if !ok {
		return s
	}
	for _, name := range output.Keys() {
		v, _ := output.Get(name)
		section, ok := v.(*yamldoc.Mapping)
		if !ok {
			continue
		}
		s.Output = append(s.Output, buildSection(name, section))
	}
	return s
}

// buildOptions normalizes an option list: bare strings and single-key
// mappings both become Options.
func buildOptions(meta *yamldoc.Mapping, key string) []Option {
	v, ok := meta.Get(key)
	if !ok {
		return nil
	}
	seq, ok := v.(yamldoc.Sequence)
	if !ok {
		return nil
	}
	var out []Option
	for _, entry := range seq {
		switch t := entry.(type) {
		case string:
			out = append(out, Option{Name: t})
		case *yamldoc.Mapping:
			if t.Len() != 1 {
				continue
			}
			name := t.Keys()[0]
			opt := Option{Name: name}
			if desc, _ := t.Get(name); desc != nil {
				if s, ok := desc.(string); ok {
					opt.Description = s
				}
			}
			out = append(out, opt)
		}
	}
	return out
}

// parseProviderRequirement splits "AzureSentinel|LocalData" into
// alternatives, trimming whitespace and dropping empty segments.
func parseProviderRequirement(req string) ProviderRequirement {
	var alts []string
	for _, part := range strings.Split(req, "|") {
		if p := strings.TrimSpace(part); p != "" {
			alts = append(alts, p)
		}
	}
	return ProviderRequirement{Alternatives: alts}
}

func buildSection(name string, m *yamldoc.Mapping) OutputSection {
	sec := OutputSection{Name: name}
	sec.Title, _ = stringValue(m, "title")
	sec.Text, _ = stringValue(m, "text")
	if v, ok := m.Get("hd_level"); ok {
		if n, ok := v.(int); ok {
			sec.HdLevel = n
		}
	}
	if v, ok := m.Get("md"); ok {
		if b, ok := v.(bool); ok {
			sec.Markdown = b
		}
	}
	return sec
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
