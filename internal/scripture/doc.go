// Package scripture defines the closed vocabularies of the sutra data set
// (languages and philosophical schools), the column naming convention that
// ties them to normalized CSV columns, and the row loader the publisher
// iterates over.
//
// Languages and philosophies are ordered lookup tables. Iteration order is
// the declared order and never changes between runs.
package scripture
