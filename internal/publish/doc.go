// Package publish pushes normalized sutra rows to the content API.
//
// A run authenticates once (provisioning an admin account when the first
// login fails), makes sure every configured project exists, then publishes
// each CSV row as a fixed sequence of independent create calls. Only an
// authentication failure aborts a run. Every other failure is local to one
// field of one row: it is logged, recorded in the row's report, and the run
// moves on. Nothing is retried and nothing is rolled back.
//
// Reports are a collection layer on top of the calls. They let the CLI print
// a summary and the ledger keep a history without changing what is sent.
package publish
