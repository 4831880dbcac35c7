// Package window defines capability tokens for the write and read windows of
// a read-mostly data structure.
//
// A coordinator (for example a time-sliced RWMutex) partitions time into
// mutually exclusive write windows and read windows. It mints a *Write token
// when a write window opens and a *Read token when a read window opens, and
// ends the token when the window closes. Operations that are only legal in
// one kind of window take the matching token as a parameter, so calling them
// outside the window is a compile-time error instead of a documented
// precondition.
//
//	w := window.BeginWrite()
//	tree.Mutate(w, word, fn)
//	w.End()
//
//	r := window.BeginRead()
//	it := tree.WordIterator(r, prefix)
//	...
//	r.End()
//
// Tokens do not provide mutual exclusion; they only carry the coordinator's
// promise. Using a token after End panics, which turns an iterator held
// across a window boundary into an immediate failure.
package window
