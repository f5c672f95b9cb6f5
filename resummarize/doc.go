// Package resummarize regenerates the summaries of stored cards, for example
// after switching models or summary types.
//
// Cards are processed in batches, each batch written back with one update.
// Progress is reported to an io.Writer while the run is going.
package resummarize
