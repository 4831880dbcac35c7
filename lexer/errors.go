package lexer

import "fmt"

// InvalidUTF8Error is returned by Tokenize when text is not valid UTF-8.
type InvalidUTF8Error struct {
	// Offset is the byte offset of the first invalid sequence.
	Offset int
}

func (e *InvalidUTF8Error) Error() string {
	return fmt.Sprintf("lexer: invalid UTF-8 at byte offset %d", e.Offset)
}
