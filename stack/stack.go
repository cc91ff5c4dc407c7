// Package stack provides the fixed-capacity bidirectional stack that
// backs the scheduler's data and call stacks.
//
// A Bidirectional hosts two independent LIFO stacks inside one byte
// buffer: the front stack grows from index 0 upward, the back stack
// grows from the last index downward. Both share a single byte budget;
// when the two cursors meet the buffer is full.
package stack

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// frameHeader is the per-entry overhead: a uint32 length written next
// to the entry so pops know how many bytes to take.
const frameHeader = 4

var (
	// ErrInsufficientCapacity is returned when a push would make the
	// two stacks overlap. The stack is left unchanged.
	ErrInsufficientCapacity = errors.New("stack: not enough space in bidirectional stack")

	// ErrEmpty is returned when popping or peeking an empty stack.
	ErrEmpty = errors.New("stack: empty")
)

// Bidirectional is a fixed-capacity buffer holding two stacks that grow
// toward each other. The zero value is unusable; use New.
type Bidirectional struct {
	buf   []byte
	front int // next free slot for the front stack
	back  int // next free slot for the back stack
}

// New creates an empty bidirectional stack with the given total byte
// capacity. Negative capacities are treated as zero.
func New(capacity int) *Bidirectional {
	if capacity < 0 {
		capacity = 0
	}
	return &Bidirectional{
		buf:   make([]byte, capacity),
		front: 0,
		back:  capacity - 1,
	}
}

// Capacity returns the total byte budget shared by both stacks.
func (b *Bidirectional) Capacity() int {
	return len(b.buf)
}

// Available returns the number of free bytes between the two cursors.
func (b *Bidirectional) Available() int {
	if b.back >= b.front {
		return b.back - b.front + 1
	}
	return 0
}

// FrontBytes returns the bytes currently occupied by the front stack,
// framing included.
func (b *Bidirectional) FrontBytes() int {
	return b.front
}

// BackBytes returns the bytes currently occupied by the back stack,
// framing included.
func (b *Bidirectional) BackBytes() int {
	return len(b.buf) - 1 - b.back
}

// IsEmptyFront reports whether the front stack holds no entries.
func (b *Bidirectional) IsEmptyFront() bool {
	return b.front == 0
}

// IsEmptyBack reports whether the back stack holds no entries.
func (b *Bidirectional) IsEmptyBack() bool {
	return b.back == len(b.buf)-1
}

// PushFront appends an entry to the front stack. The push is atomic: on
// ErrInsufficientCapacity neither cursor moves.
func (b *Bidirectional) PushFront(data []byte) error {
	need := len(data) + frameHeader
	if b.Available() < need {
		return ErrInsufficientCapacity
	}
	copy(b.buf[b.front:], data)
	binary.BigEndian.PutUint32(b.buf[b.front+len(data):], uint32(len(data)))
	b.front += need
	return nil
}

// PopFront removes and returns the most recently pushed front entry.
func (b *Bidirectional) PopFront() ([]byte, error) {
	data, err := b.PeekFront()
	if err != nil {
		return nil, err
	}
	b.front -= len(data) + frameHeader
	return data, nil
}

// PeekFront returns the top front entry without removing it.
func (b *Bidirectional) PeekFront() ([]byte, error) {
	if b.IsEmptyFront() {
		return nil, ErrEmpty
	}
	n := int(binary.BigEndian.Uint32(b.buf[b.front-frameHeader : b.front]))
	start := b.front - frameHeader - n
	if start < 0 {
		return nil, fmt.Errorf("stack: corrupt front frame: length %d exceeds stack", n)
	}
	data := make([]byte, n)
	copy(data, b.buf[start:start+n])
	return data, nil
}

// PushBack appends an entry to the back stack. The push is atomic: on
// ErrInsufficientCapacity neither cursor moves.
func (b *Bidirectional) PushBack(data []byte) error {
	need := len(data) + frameHeader
	if b.Available() < need {
		return ErrInsufficientCapacity
	}
	// Layout after the push, ascending: length header, then the data,
	// ending exactly at the old cursor position.
	start := b.back - need + 1
	binary.BigEndian.PutUint32(b.buf[start:], uint32(len(data)))
	copy(b.buf[start+frameHeader:], data)
	b.back -= need
	return nil
}

// PopBack removes and returns the most recently pushed back entry.
func (b *Bidirectional) PopBack() ([]byte, error) {
	data, err := b.PeekBack()
	if err != nil {
		return nil, err
	}
	b.back += len(data) + frameHeader
	return data, nil
}

// PeekBack returns the top back entry without removing it.
func (b *Bidirectional) PeekBack() ([]byte, error) {
	if b.IsEmptyBack() {
		return nil, ErrEmpty
	}
	n := int(binary.BigEndian.Uint32(b.buf[b.back+1 : b.back+1+frameHeader]))
	if b.back+frameHeader+n >= len(b.buf) {
		return nil, fmt.Errorf("stack: corrupt back frame: length %d exceeds stack", n)
	}
	data := make([]byte, n)
	copy(data, b.buf[b.back+1+frameHeader:b.back+1+frameHeader+n])
	return data, nil
}

// Snapshot returns a copy of the buffer together with the two cursor
// positions. The free region between the cursors is zeroed in the copy
// so that logically equal stacks snapshot to identical bytes.
func (b *Bidirectional) Snapshot() (buf []byte, front, back int) {
	buf = make([]byte, len(b.buf))
	copy(buf, b.buf)
	for i := b.front; i <= b.back; i++ {
		buf[i] = 0
	}
	return buf, b.front, b.back
}

// Restore reconstructs a stack from a previous Snapshot. The cursors
// are validated against the buffer length.
func Restore(buf []byte, front, back int) (*Bidirectional, error) {
	if front < 0 || front > len(buf) {
		return nil, fmt.Errorf("stack: invalid front cursor %d for capacity %d", front, len(buf))
	}
	if back < -1 || back >= len(buf) {
		return nil, fmt.Errorf("stack: invalid back cursor %d for capacity %d", back, len(buf))
	}
	if front > back+1 {
		return nil, fmt.Errorf("stack: overlapping cursors: front %d, back %d", front, back)
	}
	b := &Bidirectional{
		buf:   make([]byte, len(buf)),
		front: front,
		back:  back,
	}
	copy(b.buf, buf)
	return b, nil
}
