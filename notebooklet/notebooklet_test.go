package notebooklet

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLoad_HostSummary(t *testing.T) {
	s := loadSample(t)

	if s.Metadata.Name != "HostSummary" {
		t.Errorf("name: got %q", s.Metadata.Name)
	}
	if s.Metadata.Description != "Host summary" {
		t.Errorf("description: got %q", s.Metadata.Description)
	}
	if diff := cmp.Diff([]string{"host"}, s.Metadata.EntityTypes); diff != "" {
		t.Errorf("entity_types (-want +got):\n%s", diff)
	}

	wantSections := []string{"run", "show_host_entity", "show_alert_timeline"}
	var gotSections []string
	for _, sec := range s.Output {
		gotSections = append(gotSections, sec.Name)
	}
	if diff := cmp.Diff(wantSections, gotSections); diff != "" {
		t.Errorf("section order (-want +got):\n%s", diff)
	}
}

func TestLoad_RunSection(t *testing.T) {
	s := loadSample(t)

	run, ok := s.Section("run")
	if !ok {
		t.Fatal("run section missing")
	}
	if run.Title != "Host Entity Summary" {
		t.Errorf("title: got %q", run.Title)
	}
	if run.HdLevel != 1 {
		t.Errorf("hd_level: got %d, want 1", run.HdLevel)
	}
	if !run.Markdown {
		t.Error("md flag: got false, want true")
	}

	other, _ := s.Section("show_host_entity")
	if other.Markdown {
		t.Error("md default: got true, want false")
	}
	if other.HdLevel != 0 {
		t.Errorf("unset hd_level: got %d, want 0", other.HdLevel)
	}
}

func TestLoad_OptionsNormalized(t *testing.T) {
	s := loadSample(t)

	want := []Option{
		{Name: "heartbeat", Description: "Query Heartbeat table for host information."},
		{Name: "azure_api", Description: "Query Azure API for VM information."},
		{Name: "alerts", Description: "Query any alerts for the host."},
		{Name: "bookmarks", Description: "Query any bookmarks for the host."},
	}
	if diff := cmp.Diff(want, s.Metadata.DefaultOptions); diff != "" {
		t.Errorf("default_options (-want +got):\n%s", diff)
	}

	// Bare-string form normalizes to an Option with empty description.
	if diff := cmp.Diff([]Option{{Name: "azure_data"}}, s.Metadata.OtherOptions); diff != "" {
		t.Errorf("other_options (-want +got):\n%s", diff)
	}
}

func TestLoad_ProviderRequirements(t *testing.T) {
	s := loadSample(t)

	if len(s.Metadata.ReqProviders) != 2 {
		t.Fatalf("req_providers: got %d, want 2", len(s.Metadata.ReqProviders))
	}
	first := s.Metadata.ReqProviders[0]
	if diff := cmp.Diff([]string{"AzureSentinel", "LocalData"}, first.Alternatives); diff != "" {
		t.Errorf("alternatives (-want +got):\n%s", diff)
	}
	if first.String() != "AzureSentinel|LocalData" {
		t.Errorf("String(): got %q", first.String())
	}

	if !first.Satisfied([]string{"localdata"}) {
		t.Error("Satisfied(localdata): got false, want true (case-insensitive)")
	}
	if first.Satisfied([]string{"azuredata"}) {
		t.Error("Satisfied(azuredata): got true, want false")
	}
}

func TestSpec_AllOptions(t *testing.T) {
	s := loadSample(t)

	all := s.AllOptions()
	if len(all) != 5 {
		t.Fatalf("AllOptions: got %d, want 5", len(all))
	}
	if all[0].Name != "heartbeat" || all[4].Name != "azure_data" {
		t.Errorf("AllOptions order: got %v", all)
	}
}

func TestSpec_OptionsDoc(t *testing.T) {
	s := loadSample(t)

	doc := s.OptionsDoc()
	for _, want := range []string{"Default Options", "Other Options", "heartbeat", "azure_data"} {
		if !strings.Contains(doc, want) {
			t.Errorf("OptionsDoc missing %q:\n%s", want, doc)
		}
	}
}

func TestDecode_MissingRunFailsValidation(t *testing.T) {
	_, res, err := Decode([]byte(`
metadata:
  name: NoRun
  default_options:
    - alerts
  entity_types:
    - host
output:
  summary:
    title: Summary only
`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if res.Valid() {
		t.Fatal("spec without output.run accepted")
	}
	found := false
	for _, e := range res.Errors {
		if e.Path == "output.run" {
			found = true
		}
	}
	if !found {
		t.Errorf("no error identifying the missing run section: %v", res.Errors)
	}
}

func TestIndex_LookupAndViews(t *testing.T) {
	ix, res := NewIndex(
		specNamed("HostSummary", "Host summary", []string{"host", "heartbeat"}, []string{"host"}),
		specNamed("AccountSummary", "Account summary", []string{"account", "logon"}, []string{"account"}),
		specNamed("NetworkFlowSummary", "Network flows", []string{"network", "host"}, []string{"host", "ip_address"}),
	)
	if !res.Valid() {
		t.Fatalf("unexpected index errors: %v", res.Errors)
	}

	if _, ok := ix.Lookup("HostSummary"); !ok {
		t.Error("Lookup(HostSummary): miss")
	}
	if _, ok := ix.Lookup("Missing"); ok {
		t.Error("Lookup(Missing): hit, want miss")
	}

	hosts := ix.ByEntityType("host")
	if got := specNames(hosts); !cmp.Equal([]string{"HostSummary", "NetworkFlowSummary"}, got) {
		t.Errorf("ByEntityType(host): got %v", got)
	}
	if got := specNames(ix.ByKeyword("logon")); !cmp.Equal([]string{"AccountSummary"}, got) {
		t.Errorf("ByKeyword(logon): got %v", got)
	}
}

func TestIndex_FindRanksByHits(t *testing.T) {
	ix, _ := NewIndex(
		specNamed("HostSummary", "a", []string{"host", "heartbeat"}, []string{"host"}),
		specNamed("AccountSummary", "b", []string{"account", "logon"}, []string{"account"}),
		specNamed("NetworkFlowSummary", "c", []string{"network", "host"}, []string{"host"}),
	)

	// HostSummary matches host+heartbeat, NetworkFlowSummary matches host only.
	got := specNames(ix.Find("host", "heartbeat"))
	want := []string{"HostSummary", "NetworkFlowSummary"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Find ranking (-want +got):\n%s", diff)
	}

	if got := ix.Find("nosuchterm"); len(got) != 0 {
		t.Errorf("Find(nosuchterm): got %d specs, want 0", len(got))
	}
}

func TestIndex_DuplicateName(t *testing.T) {
	ix, res := NewIndex(
		specNamed("HostSummary", "first", nil, []string{"host"}),
		specNamed("HostSummary", "second", nil, []string{"host"}),
	)

	if res.Valid() {
		t.Error("duplicate notebooklet name produced no error")
	}
	if ix.Len() != 1 {
		t.Errorf("index size: got %d, want 1", ix.Len())
	}
	s, _ := ix.Lookup("HostSummary")
	if s.Metadata.Description != "first" {
		t.Errorf("surviving spec: got %q, want the first", s.Metadata.Description)
	}
}

func TestIndex_DuplicateDescriptionWarns(t *testing.T) {
	_, res := NewIndex(
		specNamed("AzureActivityHost", "Azure Activity", nil, []string{"host"}),
		specNamed("AzureActivityAccount", "Azure Activity", nil, []string{"account"}),
	)

	if !res.Valid() {
		t.Errorf("duplicate description must not be an error: %v", res.Errors)
	}
	if len(res.Warnings) != 1 {
		t.Fatalf("warnings: got %d, want 1: %v", len(res.Warnings), res.Warnings)
	}
	if !strings.Contains(res.Warnings[0].Message, "AzureActivityHost") {
		t.Errorf("warning should name the first spec: %v", res.Warnings[0])
	}
}

// loadSample loads the testdata spec, failing the test on any defect.
func loadSample(t *testing.T) *Spec {
	t.Helper()
	s, res, err := Load(filepath.Join("testdata", "host_summary.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !res.Valid() {
		t.Fatalf("sample spec has validation errors: %v", res.Errors)
	}
	return s
}

// specNames extracts metadata names from specs in order.
func specNames(specs []*Spec) []string {
	var names []string
	for _, s := range specs {
		names = append(names, s.Metadata.Name)
	}
	return names
}

// specNamed builds a minimal valid spec for index tests.
func specNamed(name, desc string, keywords, entities []string) *Spec {
	return &Spec{
		Metadata: Metadata{
			Name:        name,
			Description: desc,
			Keywords:    keywords,
			EntityTypes: entities,
		},
		Output: []OutputSection{{Name: "run", Title: name}},
	}
}
