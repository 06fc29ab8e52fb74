// Package reload provides the two pieces a host needs for safe hot reload
// of loaded catalogs and notebooklet specs: an atomically swappable Holder
// for publishing immutable indexes, and a file watcher that triggers a
// reload callback on change.
//
// The library deliberately owns only the mechanism. When to reload, and
// whether a document's validation findings are fatal, stay host decisions;
// on a failed reload the previous value simply remains published.
package reload
