// Package buffer defines the contract the operation algebra and execution
// driver use to read and mutate the shared text, plus a reference in-memory
// implementation.
package buffer

import "github.com/sfurman3/inftext/chunk"

// Buffer is the contract a text storage adapter must satisfy. Only the
// execution driver and the operation algebra call InsertChunk/Erase; a
// buffer implementation used interactively (e.g. backing a text widget)
// typically also exposes the local-edit notification hooks below so the
// session can learn about locally typed characters.
type Buffer interface {
	// Len returns the number of characters currently in the buffer.
	Len() int

	// Slice returns the length characters starting at pos.
	Slice(pos, length int) (*chunk.Chunk, error)

	// InsertChunk inserts c at character position pos, attributing the
	// inserted characters to author.
	InsertChunk(pos int, c *chunk.Chunk, author uint32) error

	// Erase removes the length characters starting at pos.
	Erase(pos, length int, author uint32) error

	// Modified reports whether the buffer has unsaved changes.
	Modified() bool

	// SetModified forces the modified flag, bypassing change tracking.
	// The execution driver uses this to restore modified=false after an
	// undo sequence returns the buffer to an equivalent state.
	SetModified(modified bool)

	// SetNotificationsSuppressed toggles whether InsertChunk/Erase fire
	// the local-edit notification hooks. The driver suppresses
	// notifications whenever it applies a request to the buffer itself
	// (remote requests and undo/redo included), so that the mutation
	// isn't mistaken for a new local edit.
	SetNotificationsSuppressed(suppressed bool)
}
