package stack

import (
	"bytes"
	"fmt"
	"testing"
)

func TestPushPopFront(t *testing.T) {
	s := New(32)
	if !s.IsEmptyFront() {
		t.Fatal("new stack should have empty front")
	}

	if err := s.PushFront([]byte{1, 2, 3}); err != nil {
		t.Fatalf("PushFront: %v", err)
	}
	if s.IsEmptyFront() {
		t.Fatal("front should not be empty after push")
	}

	data, err := s.PopFront()
	if err != nil {
		t.Fatalf("PopFront: %v", err)
	}
	if !bytes.Equal(data, []byte{1, 2, 3}) {
		t.Errorf("PopFront: got %v, want [1 2 3]", data)
	}
	if !s.IsEmptyFront() {
		t.Error("front should be empty after pop")
	}
}

func TestPushPopBack(t *testing.T) {
	s := New(32)
	if !s.IsEmptyBack() {
		t.Fatal("new stack should have empty back")
	}

	if err := s.PushBack([]byte{1, 2, 3}); err != nil {
		t.Fatalf("PushBack: %v", err)
	}
	if s.IsEmptyBack() {
		t.Fatal("back should not be empty after push")
	}

	data, err := s.PopBack()
	if err != nil {
		t.Fatalf("PopBack: %v", err)
	}
	if !bytes.Equal(data, []byte{1, 2, 3}) {
		t.Errorf("PopBack: got %v, want [1 2 3]", data)
	}
	if !s.IsEmptyBack() {
		t.Error("back should be empty after pop")
	}
}

func TestLIFOOrdering(t *testing.T) {
	s := New(1024)
	const n = 20

	for i := 0; i < n; i++ {
		entry := []byte(fmt.Sprintf("entry-%02d", i))
		if err := s.PushFront(entry); err != nil {
			t.Fatalf("PushFront %d: %v", i, err)
		}
		if err := s.PushBack(entry); err != nil {
			t.Fatalf("PushBack %d: %v", i, err)
		}
	}

	for i := n - 1; i >= 0; i-- {
		want := []byte(fmt.Sprintf("entry-%02d", i))
		front, err := s.PopFront()
		if err != nil {
			t.Fatalf("PopFront %d: %v", i, err)
		}
		if !bytes.Equal(front, want) {
			t.Errorf("PopFront %d: got %q, want %q", i, front, want)
		}
		back, err := s.PopBack()
		if err != nil {
			t.Fatalf("PopBack %d: %v", i, err)
		}
		if !bytes.Equal(back, want) {
			t.Errorf("PopBack %d: got %q, want %q", i, back, want)
		}
	}
}

func TestCapacityInvariant(t *testing.T) {
	s := New(64)
	for i := 0; ; i++ {
		var err error
		if i%2 == 0 {
			err = s.PushFront([]byte{byte(i), byte(i)})
		} else {
			err = s.PushBack([]byte{byte(i), byte(i), byte(i)})
		}
		if err != nil {
			break
		}
		if s.FrontBytes()+s.BackBytes() > s.Capacity() {
			t.Fatalf("invariant violated after push %d: front %d + back %d > capacity %d",
				i, s.FrontBytes(), s.BackBytes(), s.Capacity())
		}
	}
}

func TestRejectedPushLeavesCursorsUnchanged(t *testing.T) {
	s := New(16)
	if err := s.PushFront([]byte{1, 2, 3, 4}); err != nil {
		t.Fatalf("PushFront: %v", err)
	}
	front, back := s.FrontBytes(), s.BackBytes()

	// 9 payload bytes + 4 header bytes > 8 remaining.
	err := s.PushBack(bytes.Repeat([]byte{7}, 9))
	if err != ErrInsufficientCapacity {
		t.Fatalf("PushBack: got %v, want ErrInsufficientCapacity", err)
	}
	if s.FrontBytes() != front || s.BackBytes() != back {
		t.Errorf("cursors moved on rejected push: front %d->%d, back %d->%d",
			front, s.FrontBytes(), back, s.BackBytes())
	}

	// The surviving entry is intact.
	data, err := s.PopFront()
	if err != nil {
		t.Fatalf("PopFront: %v", err)
	}
	if !bytes.Equal(data, []byte{1, 2, 3, 4}) {
		t.Errorf("PopFront after rejected push: got %v", data)
	}
}

func TestPopEmpty(t *testing.T) {
	s := New(16)
	if _, err := s.PopFront(); err != ErrEmpty {
		t.Errorf("PopFront on empty: got %v, want ErrEmpty", err)
	}
	if _, err := s.PopBack(); err != ErrEmpty {
		t.Errorf("PopBack on empty: got %v, want ErrEmpty", err)
	}
	if _, err := s.PeekBack(); err != ErrEmpty {
		t.Errorf("PeekBack on empty: got %v, want ErrEmpty", err)
	}
}

func TestPeekDoesNotConsume(t *testing.T) {
	s := New(32)
	if err := s.PushBack([]byte("task")); err != nil {
		t.Fatalf("PushBack: %v", err)
	}

	for i := 0; i < 3; i++ {
		data, err := s.PeekBack()
		if err != nil {
			t.Fatalf("PeekBack %d: %v", i, err)
		}
		if string(data) != "task" {
			t.Errorf("PeekBack %d: got %q", i, data)
		}
	}
	if s.BackBytes() != 8 {
		t.Errorf("BackBytes after peeks: got %d, want 8", s.BackBytes())
	}
}

func TestBidirectionalInterleaved(t *testing.T) {
	s := New(64)
	if err := s.PushFront([]byte{1, 2}); err != nil {
		t.Fatalf("PushFront: %v", err)
	}
	if err := s.PushBack([]byte{3, 4}); err != nil {
		t.Fatalf("PushBack: %v", err)
	}

	front, err := s.PopFront()
	if err != nil {
		t.Fatalf("PopFront: %v", err)
	}
	back, err := s.PopBack()
	if err != nil {
		t.Fatalf("PopBack: %v", err)
	}
	if !bytes.Equal(front, []byte{1, 2}) || !bytes.Equal(back, []byte{3, 4}) {
		t.Errorf("got front %v, back %v", front, back)
	}
}

func TestEmptyEntry(t *testing.T) {
	s := New(16)
	if err := s.PushFront(nil); err != nil {
		t.Fatalf("PushFront(nil): %v", err)
	}
	data, err := s.PopFront()
	if err != nil {
		t.Fatalf("PopFront: %v", err)
	}
	if len(data) != 0 {
		t.Errorf("got %v, want empty", data)
	}
}

func TestZeroCapacity(t *testing.T) {
	s := New(0)
	if !s.IsEmptyFront() || !s.IsEmptyBack() {
		t.Error("zero-capacity stack should be empty on both ends")
	}
	if err := s.PushFront([]byte{1}); err != ErrInsufficientCapacity {
		t.Errorf("PushFront: got %v, want ErrInsufficientCapacity", err)
	}
}

func TestSnapshotRestore(t *testing.T) {
	s := New(64)
	if err := s.PushFront([]byte("data")); err != nil {
		t.Fatalf("PushFront: %v", err)
	}
	if err := s.PushBack([]byte("task")); err != nil {
		t.Fatalf("PushBack: %v", err)
	}

	buf, front, back := s.Snapshot()
	restored, err := Restore(buf, front, back)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}

	data, err := restored.PopFront()
	if err != nil || string(data) != "data" {
		t.Errorf("restored PopFront: %q, %v", data, err)
	}
	task, err := restored.PopBack()
	if err != nil || string(task) != "task" {
		t.Errorf("restored PopBack: %q, %v", task, err)
	}
}

func TestSnapshotZeroesFreeRegion(t *testing.T) {
	a := New(64)
	b := New(64)

	// Same logical state, different history: a held extra entries once.
	if err := a.PushFront([]byte("scratch-scratch")); err != nil {
		t.Fatalf("PushFront: %v", err)
	}
	if _, err := a.PopFront(); err != nil {
		t.Fatalf("PopFront: %v", err)
	}
	for _, s := range []*Bidirectional{a, b} {
		if err := s.PushFront([]byte("x")); err != nil {
			t.Fatalf("PushFront: %v", err)
		}
	}

	bufA, _, _ := a.Snapshot()
	bufB, _, _ := b.Snapshot()
	if !bytes.Equal(bufA, bufB) {
		t.Error("snapshots of logically equal stacks differ")
	}
}

func TestRestoreRejectsInvalidCursors(t *testing.T) {
	buf := make([]byte, 16)
	cases := []struct {
		name        string
		front, back int
	}{
		{"negative front", -1, 15},
		{"front past end", 17, 15},
		{"back past end", 0, 16},
		{"back below start", 0, -2},
		{"overlap", 10, 5},
	}
	for _, tc := range cases {
		if _, err := Restore(buf, tc.front, tc.back); err == nil {
			t.Errorf("%s: Restore accepted front=%d back=%d", tc.name, tc.front, tc.back)
		}
	}
}
