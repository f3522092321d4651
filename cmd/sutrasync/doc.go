// Package main hosts the sutrasync CLI entrypoint and command graph.
//
// The Cobra command tree exposes the two pipelines (merge and publish) plus
// project maintenance, run history and configuration scaffolding. It resolves
// configuration once per invocation, builds the logger and content API client,
// and renders summaries as tables. Pipeline behaviour lives in the internal
// packages.
package main
