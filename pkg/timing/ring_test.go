package timing

import "testing"

func TestNewRing(t *testing.T) {
	r, err := NewRing(32)
	if err != nil {
		t.Fatalf("NewRing failed: %v", err)
	}
	if r.Capacity() != 32 {
		t.Errorf("expected capacity 32, got %d", r.Capacity())
	}
}

func TestNewRing_InvalidCapacity(t *testing.T) {
	for _, capacity := range []int{0, 1, 3, 24, 33} {
		if _, err := NewRing(capacity); err == nil {
			t.Errorf("expected error for capacity %d", capacity)
		}
	}
}

func TestRing_RecordLookup(t *testing.T) {
	r, err := NewRing(8)
	if err != nil {
		t.Fatalf("NewRing failed: %v", err)
	}

	r.Record(0, 0, 1000)
	r.Record(1, 1000, 500)
	r.Record(2, 1500, 1000)

	start, dur := r.Lookup(1)
	if start != 1000 || dur != 500 {
		t.Errorf("Lookup(1) = (%d, %d), want (1000, 500)", start, dur)
	}
}

func TestRing_LiveWindow(t *testing.T) {
	// Every sequence within the last capacity records must read back
	// exactly what was stored for it.
	r, err := NewRing(8)
	if err != nil {
		t.Fatalf("NewRing failed: %v", err)
	}

	const total = 100
	for seq := int64(0); seq < total; seq++ {
		r.Record(seq, seq*1000, 1000+seq)

		lo := seq - int64(r.Capacity()) + 1
		if lo < 0 {
			lo = 0
		}
		for s := lo; s <= seq; s++ {
			start, dur := r.Lookup(s)
			if start != s*1000 || dur != 1000+s {
				t.Fatalf("Lookup(%d) after recording %d = (%d, %d), want (%d, %d)",
					s, seq, start, dur, s*1000, 1000+s)
			}
		}
	}
}

func TestRing_Overwrite(t *testing.T) {
	r, err := NewRing(4)
	if err != nil {
		t.Fatalf("NewRing failed: %v", err)
	}

	r.Record(0, 0, 1000)
	// Sequence 4 shares slot 0 in a 4-entry ring.
	r.Record(4, 4000, 1000)

	start, _ := r.Lookup(4)
	if start != 4000 {
		t.Errorf("Lookup(4) start = %d, want 4000", start)
	}
}
