package model

import (
	"fmt"
)

// RowID is a dense, index-local identifier for a document.
// Postings store RowIDs rather than primary keys so they fit a 32-bit
// roaring bitmap. A RowID is never reused while its document is live.
type RowID uint32

// PrimaryKey is the user-facing stable identifier of a document.
type PrimaryKey uint64

// Candidate represents a document matched by a query.
type Candidate struct {
	// PK is the user-facing primary key.
	PK PrimaryKey
	// Row is the index-local row of the document.
	Row RowID
	// Term is the indexed word that selected the document. When several
	// words match, it is the one with the smallest Distance.
	Term string
	// Distance is the edit distance between Term and the query word.
	// Exact and prefix matches report zero.
	Distance int
}

// String returns a short representation of the candidate.
func (c Candidate) String() string {
	return fmt.Sprintf("Candidate(pk=%d row=%d term=%q dist=%d)", c.PK, c.Row, c.Term, c.Distance)
}
