package catalog

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/nbcatalog/nbcatalog/schema"
)

func TestLoad_SampleCatalog(t *testing.T) {
	c, res := loadSample(t)

	if !res.Valid() {
		t.Fatalf("sample catalog has validation errors: %v", res.Errors)
	}
	if c.Metadata.Version != 1 {
		t.Errorf("version: got %d, want 1", c.Metadata.Version)
	}
	if diff := cmp.Diff([]string{"LogAnalytics"}, c.Metadata.DataEnvironments); diff != "" {
		t.Errorf("data_environments (-want +got):\n%s", diff)
	}
	if len(c.Queries) != 8 {
		t.Fatalf("queries: got %d, want 8", len(c.Queries))
	}
}

func TestLoad_DefaultsMergedIntoEntries(t *testing.T) {
	c, _ := loadSample(t)

	q := findQuery(t, c, "list_host_processes")

	// Inherited from defaults.metadata.
	if diff := cmp.Diff([]string{"WindowsSecurity"}, q.DataFamilies()); diff != "" {
		t.Errorf("inherited data_families (-want +got):\n%s", diff)
	}

	// Inherited parameters plus the entry's own.
	for _, want := range []string{"table", "start", "end", "host_name"} {
		if _, ok := q.Parameters[want]; !ok {
			t.Errorf("parameter %q: missing from effective parameters", want)
		}
	}
	if got := q.Parameters["table"].Default; got != "SecurityEvent" {
		t.Errorf("table default: got %v, want SecurityEvent", got)
	}
	if got := q.Parameters["host_name"].Type; got != "str" {
		t.Errorf("host_name type: got %q, want str", got)
	}
}

func TestLoad_EntryOverridesDefaults(t *testing.T) {
	c, _ := loadSample(t)

	q := findQuery(t, c, "az_net_analytics")
	if diff := cmp.Diff([]string{"AzureNetwork"}, q.DataFamilies()); diff != "" {
		t.Errorf("overridden data_families (-want +got):\n%s", diff)
	}
	if q.QueryFile != "az_net_analytics.kql" {
		t.Errorf("query file: got %q", q.QueryFile)
	}
}

func TestQueryIndex_ByFamilyOrder(t *testing.T) {
	c, _ := loadSample(t)
	ix := NewQueryIndex(c)

	got := names(ix.ByFamily("WindowsSecurity"))
	want := []string{
		"list_host_processes",
		"list_host_logons",
		"list_host_logon_failures",
		"list_logon_attempts_by_account",
		"list_host_events",
		"get_process_tree",
		"list_all_logons_by_host",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ByFamily(WindowsSecurity) (-want +got):\n%s", diff)
	}

	if got := names(ix.ByFamily("AzureNetwork")); len(got) != 1 || got[0] != "az_net_analytics" {
		t.Errorf("ByFamily(AzureNetwork): got %v", got)
	}
	if got := ix.ByFamily("NoSuchFamily"); len(got) != 0 {
		t.Errorf("ByFamily(NoSuchFamily): got %d entries, want 0", len(got))
	}
}

func TestQueryIndex_ByEnvironment(t *testing.T) {
	c, _ := loadSample(t)
	ix := NewQueryIndex(c)

	// No entry sets its own environments, so all inherit the catalog level.
	if got := ix.ByEnvironment("LogAnalytics"); len(got) != ix.Len() {
		t.Errorf("ByEnvironment(LogAnalytics): got %d entries, want %d", len(got), ix.Len())
	}
	if got := ix.ByEnvironment("Splunk"); len(got) != 0 {
		t.Errorf("ByEnvironment(Splunk): got %d entries, want 0", len(got))
	}
}

func TestQueryIndex_Lookup(t *testing.T) {
	c, _ := loadSample(t)
	ix := NewQueryIndex(c)

	q, ok := ix.Lookup("get_process_tree")
	if !ok {
		t.Fatal("Lookup(get_process_tree): not found")
	}
	if q.QueryFile != "get_process_tree.kql" {
		t.Errorf("query file: got %q", q.QueryFile)
	}

	if _, ok := ix.Lookup("no_such_query"); ok {
		t.Error("Lookup(no_such_query): found, want miss")
	}
}

func TestDecode_DuplicateNameKeepsFirstEntry(t *testing.T) {
	c, res, err := Decode([]byte(`
metadata:
  version: 1
  data_environments: [LogAnalytics]
defaults:
  metadata:
    data_families: [WindowsSecurity]
sources:
  list_host_logons:
    args:
      query: first.kql
  list_host_logons:
    args:
      query: second.kql
`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if res.Valid() {
		t.Error("duplicate query name produced no validation error")
	}

	ix := NewQueryIndex(c)
	if ix.Len() != 1 {
		t.Fatalf("index size: got %d, want 1", ix.Len())
	}
	q, _ := ix.Lookup("list_host_logons")
	if q.QueryFile != "first.kql" {
		t.Errorf("surviving entry: got %q, want first.kql", q.QueryFile)
	}
}

func TestDecode_ParseErrorIsFatal(t *testing.T) {
	_, _, err := Decode([]byte("sources: [unclosed\n"))
	if err == nil {
		t.Fatal("malformed document accepted")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("missing file accepted")
	}
}

// loadSample loads the testdata catalog, failing the test on any error.
func loadSample(t *testing.T) (*Catalog, *schema.Result) {
	t.Helper()
	c, res, err := Load(filepath.Join("testdata", "windows_host_queries.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return c, res
}

func findQuery(t *testing.T, c *Catalog, name string) Query {
	t.Helper()
	for _, q := range c.Queries {
		if q.Name == name {
			return q
		}
	}
	t.Fatalf("query %q not in catalog", name)
	return Query{}
}

func names(qs []Query) []string {
	out := make([]string, len(qs))
	for i, q := range qs {
		out[i] = q.Name
	}
	return out
}
