// Package history provides SQLite-backed records of exported batches.
package history

import "time"

// Export represents one batch written to disk.
type Export struct {
	ID         string
	Name       string
	Path       string
	Design     string
	Dir        string // fmri_spec.dir of the batch
	Sessions   int
	Conditions int
	Compressed bool
	Bytes      int64
	CreatedAt  time.Time
}
