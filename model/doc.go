// Package model defines the identity types shared by textidx packages.
//
// # Identity Types
//
//   - PrimaryKey: user-facing stable document identifier (uint64)
//   - RowID: dense, index-local document number stored in postings (uint32)
//
// # Result Types
//
//   - Candidate: a document matched by a term-expansion query
package model
