// Package tasks runs long operations over the Spotify services and reports progress on a channel.
//
// # Bulk Export
//
// [Exporter.BulkExport] fans playlist ids out to a bounded pool of workers. Workers share one
// [rate.Limiter], so fetches stay paced however many workers run. Each playlist is
// loaded through a [PlaylistSource], turned into a [formatter.Listing] and written in the chosen format.
// A failure is recorded in the result and the manifest; it does not stop the other exports.
//
// # Progress Reporting
//
// Updates are sent with a non-blocking select, so a slow or absent reader never stalls the workers.
// Pass a nil channel to disable them.
package tasks
