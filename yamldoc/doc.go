// Package yamldoc parses YAML documents into an order-preserving tree.
//
// The standard map-based decoding in yaml.v3 discards mapping key order,
// but order is semantically meaningful in the documents this module loads
// (query source order, output section order, option order). Parse therefore
// walks the yaml.Node tree directly and produces:
//   - *Mapping — key/value pairs in document order, with by-key lookup
//   - Sequence — a []Value in document order
//   - scalars — string, int, float64, bool, or nil
//
// Duplicate mapping keys are not a parse failure: the first pair wins and
// the duplicate is recorded on the Mapping so schema validation can report
// it with its line number.
//
// Encode re-serializes a tree with key order intact, so a parse → encode →
// parse round trip yields a structurally equal document.
package yamldoc
