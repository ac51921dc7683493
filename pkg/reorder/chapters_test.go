package reorder

import "testing"

func TestChapterQueue_FIFO(t *testing.T) {
	var q ChapterQueue

	q.Enqueue(3)
	q.Enqueue(48)
	q.Enqueue(90)

	if q.Len() != 3 {
		t.Fatalf("Len = %d, want 3", q.Len())
	}

	for _, want := range []int64{3, 48, 90} {
		seq, ok := q.DequeueForKeyframe()
		if !ok {
			t.Fatalf("expected pending chapter %d", want)
		}
		if seq != want {
			t.Errorf("dequeued %d, want %d", seq, want)
		}
	}

	if _, ok := q.DequeueForKeyframe(); ok {
		t.Error("dequeue from empty queue returned a chapter")
	}
}

func TestChapterQueue_EmptyKeyframe(t *testing.T) {
	// Keyframes without a pending chapter are the common case: every GOP
	// boundary produces one.
	var q ChapterQueue
	if _, ok := q.DequeueForKeyframe(); ok {
		t.Error("expected no chapter")
	}
	q.Enqueue(7)
	if seq, ok := q.DequeueForKeyframe(); !ok || seq != 7 {
		t.Errorf("got (%d, %v), want (7, true)", seq, ok)
	}
}
