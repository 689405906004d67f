// Package tasks runs long catalog operations with progress reporting.
//
// # Bulk Export
//
// [Exporter.Export] writes one file per movie into an output directory:
//
//  1. A producer fetches each movie (and optionally its credits) through a rate limiter
//  2. A small worker pool renders and writes the files with the formatter package
//  3. A manifest (export_manifest.json) summarizes successes and failures
//
// A movie that fails to fetch or write is recorded in the result and does not stop the export.
//
// [Exporter.FavoriteIDs] walks every favorites page so the whole list can be exported.
//
// # Progress Reporting
//
// Operations accept a send-only [ProgressUpdate] channel, which may be nil. Sends never block:
// an update is dropped when the channel is full. Callers close the channel after the operation returns.
package tasks
