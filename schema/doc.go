// Package schema validates parsed documents against the two document kinds
// this module understands: query catalogs and notebooklet specs.
//
// Validate collects every defect it finds in one pass and returns them in a
// Result — it never stops at the first problem, so a caller sees the full
// defect list for a document. The only hard error is a document whose root
// is not a mapping; everything else, including missing required fields,
// wrong types and duplicate names, is reported as an Issue.
//
// Warnings are advisory and never make a Result invalid.
package schema
