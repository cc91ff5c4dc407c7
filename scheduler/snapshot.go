package scheduler

import (
	"fmt"

	"github.com/neotheprogramist/scheduler/stack"
)

// snapshotVersion is bumped whenever the snapshot layout changes.
// v1: capacity, two cursors, raw buffer with per-entry length frames.
const snapshotVersion = 1

// snapshot is the wire form of a scheduler's entire in-flight state:
// both stacks' bytes with their boundaries. Task entries inside the
// buffer carry their own type tags, so restoring needs nothing beyond
// a registry holding the same kinds.
type snapshot struct {
	Version  uint32 `cbor:"version"`
	Capacity uint32 `cbor:"capacity"`
	Front    uint32 `cbor:"front"`
	Back     int64  `cbor:"back"`
	Buffer   []byte `cbor:"buffer"`
}

// MarshalBinary captures the scheduler's full state between two Execute
// calls. The free region between the stacks is zeroed first, so two
// schedulers in the same logical state marshal to identical bytes, and
// two schedulers restored from identical bytes produce identical
// execution traces.
func (s *Scheduler) MarshalBinary() ([]byte, error) {
	buf, front, back := s.stack.Snapshot()
	data, err := cborEncMode.Marshal(snapshot{
		Version:  snapshotVersion,
		Capacity: uint32(len(buf)),
		Front:    uint32(front),
		Back:     int64(back),
		Buffer:   buf,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: marshal snapshot: %v", ErrEncoding, err)
	}
	return data, nil
}

// UnmarshalBinary replaces the scheduler's state with a previously
// marshaled snapshot. The registry is left untouched.
func (s *Scheduler) UnmarshalBinary(data []byte) error {
	var snap snapshot
	if err := cborDecMode.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("%w: unmarshal snapshot: %v", ErrEncoding, err)
	}
	if snap.Version != snapshotVersion {
		return fmt.Errorf("%w: unsupported snapshot version %d", ErrEncoding, snap.Version)
	}
	if int(snap.Capacity) != len(snap.Buffer) {
		return fmt.Errorf("%w: snapshot capacity %d does not match buffer length %d",
			ErrEncoding, snap.Capacity, len(snap.Buffer))
	}
	st, err := stack.Restore(snap.Buffer, int(snap.Front), int(snap.Back))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEncoding, err)
	}
	s.stack = st
	return nil
}

// Restore constructs a scheduler from a previously marshaled snapshot.
// The capacity comes from the snapshot; WithCapacity options are
// ignored.
func Restore(data []byte, opts ...Option) (*Scheduler, error) {
	s := New(opts...)
	if err := s.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	return s, nil
}
