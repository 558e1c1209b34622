// Package catalogimport implements the bulk catalog import pipeline.
//
// A batch of raw rows flows one way through four stages: the datanorm
// normalizer unifies headers and value shapes, the reference index resolves
// category and target group names to IDs, the row validator accepts or
// rejects the row, and the entity writer persists the entry and its links.
// The Service drives the stages row by row, turns every per-row failure into
// an ImportError value, and records one audit entry per batch.
//
// The reference index and the duplicate-name snapshot are taken once before
// the first row. Rows never observe categories created later in the batch.
//
// The service depends only on the interfaces in repository.go. It never
// imports net/http or database/sql directly.
package catalogimport
