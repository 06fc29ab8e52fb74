// Package notebooklet loads YAML notebooklet specs: the metadata (name,
// description, options, keywords, entity types, required providers) and the
// named output sections of one report unit in a security-analytics notebook
// framework.
//
// Option entries are normalized at decode time: a bare string and a
// single-key mapping (name → description) both become an Option, so
// downstream code never branches on the YAML form. Provider requirements
// written as "AzureSentinel|LocalData" are split into alternatives.
//
// Index aggregates many specs and answers lookups by name, entity type and
// keyword, plus a ranked free-text Find over each spec's search terms.
// Specs and indexes are immutable after construction.
package notebooklet
