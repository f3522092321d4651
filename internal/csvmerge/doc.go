// Package csvmerge normalizes per-Upanishad spreadsheets into the single CSV
// layout consumed by the publisher.
//
// Each input is described by a name|path|chapter triple. Rows are prefixed
// with the name and chapter and their columns are remapped according to the
// source's layout. A source that cannot be read is logged and skipped; the
// merge still produces output for the rest.
package csvmerge
