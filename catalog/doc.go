// Package catalog loads YAML query catalogs: documents that map logical
// query names to stored query files and parameters, with catalog-wide
// defaults inherited by every source.
//
// Load(path) / Decode(data) parse and validate a document, then build each
// query's effective metadata and parameters by deep-merging the catalog
// defaults under the entry's own values (the entry wins on conflict).
// Validation findings are returned alongside the catalog so the host can
// decide which defects are fatal; a catalog with, say, a duplicate query
// name is still built with the first occurrence so exploratory callers can
// keep working.
//
// NewQueryIndex builds a read-only lookup over a catalog: by name, by data
// family, and by data environment, all preserving document order. Indexes
// are immutable after construction and safe for concurrent readers; a host
// that reloads catalogs swaps whole indexes (see the reload package).
package catalog
