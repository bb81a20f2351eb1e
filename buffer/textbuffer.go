package buffer

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/sfurman3/inftext/chunk"
)

// InsertHook is called after a character range is inserted into a
// TextBuffer, unless notifications are suppressed.
type InsertHook func(pos int, c *chunk.Chunk, author uint32)

// EraseHook is called after a character range is erased from a TextBuffer,
// unless notifications are suppressed.
type EraseHook func(pos int, c *chunk.Chunk, author uint32)

// ModifiedHook is called whenever the modified flag changes value.
type ModifiedHook func(modified bool)

// TextBuffer is a reference in-memory implementation of Buffer, backed by a
// single Chunk holding the whole document.
type TextBuffer struct {
	mu       sync.Mutex
	content  *chunk.Chunk
	modified bool
	suppress bool

	onInsert   []InsertHook
	onErase    []EraseHook
	onModified []ModifiedHook
}

// New returns an empty TextBuffer.
func New() *TextBuffer {
	return &TextBuffer{content: chunk.Empty()}
}

// FromChunk returns a TextBuffer initialized with the given content (e.g.
// from a session snapshot). The buffer starts unmodified.
func FromChunk(c *chunk.Chunk) *TextBuffer {
	return &TextBuffer{content: c.Clone()}
}

// OnInsert registers a callback invoked after every non-suppressed insert.
func (b *TextBuffer) OnInsert(h InsertHook) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onInsert = append(b.onInsert, h)
}

// OnErase registers a callback invoked after every non-suppressed erase.
func (b *TextBuffer) OnErase(h EraseHook) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onErase = append(b.onErase, h)
}

// OnModifiedChanged registers a callback invoked whenever the modified flag
// transitions.
func (b *TextBuffer) OnModifiedChanged(h ModifiedHook) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onModified = append(b.onModified, h)
}

// Len implements Buffer.
func (b *TextBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.content.Len()
}

// Slice implements Buffer.
func (b *TextBuffer) Slice(pos, length int) (*chunk.Chunk, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.content.Slice(pos, length)
}

// String returns the full text content, discarding authorship.
func (b *TextBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.content.String()
}

// InsertChunk implements Buffer.
func (b *TextBuffer) InsertChunk(pos int, c *chunk.Chunk, author uint32) error {
	b.mu.Lock()
	out, err := b.content.Insert(pos, c)
	if err != nil {
		b.mu.Unlock()
		return errors.Wrap(err, "buffer: insert")
	}
	b.content = out
	b.setModifiedLocked(true)
	suppressed := b.suppress
	hooks := append([]InsertHook(nil), b.onInsert...)
	b.mu.Unlock()

	if !suppressed {
		for _, h := range hooks {
			h(pos, c, author)
		}
	}
	return nil
}

// Erase implements Buffer.
func (b *TextBuffer) Erase(pos, length int, author uint32) error {
	b.mu.Lock()
	erased, err := b.content.Slice(pos, length)
	if err != nil {
		b.mu.Unlock()
		return errors.Wrap(err, "buffer: erase")
	}
	out, err := b.content.Erase(pos, length)
	if err != nil {
		b.mu.Unlock()
		return errors.Wrap(err, "buffer: erase")
	}
	b.content = out
	b.setModifiedLocked(true)
	suppressed := b.suppress
	hooks := append([]EraseHook(nil), b.onErase...)
	b.mu.Unlock()

	if !suppressed {
		for _, h := range hooks {
			h(pos, erased, author)
		}
	}
	return nil
}

// Modified implements Buffer.
func (b *TextBuffer) Modified() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.modified
}

// SetModified implements Buffer.
func (b *TextBuffer) SetModified(modified bool) {
	b.mu.Lock()
	b.setModifiedLocked(modified)
	b.mu.Unlock()
}

func (b *TextBuffer) setModifiedLocked(modified bool) {
	if b.modified == modified {
		return
	}
	b.modified = modified
	hooks := append([]ModifiedHook(nil), b.onModified...)
	// Invoked with b.mu held; a ModifiedHook must not call back into the
	// buffer.
	for _, h := range hooks {
		h(modified)
	}
}

// SetNotificationsSuppressed implements Buffer.
func (b *TextBuffer) SetNotificationsSuppressed(suppressed bool) {
	b.mu.Lock()
	b.suppress = suppressed
	b.mu.Unlock()
}
