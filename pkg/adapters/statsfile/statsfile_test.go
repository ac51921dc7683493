package statsfile

import (
	"path/filepath"
	"testing"

	"github.com/user/retime/pkg/adapters/osfilesystem"
)

func TestLog_TwoPassRoundTrip(t *testing.T) {
	fs := osfilesystem.New()
	path := filepath.Join(t.TempDir(), "pass.log")

	// Pass one: fragments appended in submission order.
	first := New(fs, path)
	for _, frag := range []string{"f0 size=120;\n", "f1 size=48;\n", "f2 size=52;\n"} {
		if err := first.Append([]byte(frag)); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	// Pass two: the whole blob comes back in one read.
	second := New(fs, path)
	defer second.Close()
	got, err := second.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	want := "f0 size=120;\nf1 size=48;\nf2 size=52;\n"
	if string(got) != want {
		t.Errorf("ReadAll = %q, want %q", got, want)
	}
}

func TestLog_ReusedPathStartsEmpty(t *testing.T) {
	fs := osfilesystem.New()
	path := filepath.Join(t.TempDir(), "pass.log")

	// First run leaves its stats behind at the shared path.
	run1 := New(fs, path)
	if err := run1.Append([]byte("run1-stats;")); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if err := run1.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	// A later run over the same path must not feed its second pass the
	// earlier run's fragments.
	run2 := New(fs, path)
	if err := run2.Append([]byte("run2-stats;")); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if err := run2.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reader := New(fs, path)
	defer reader.Close()
	got, err := reader.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if string(got) != "run2-stats;" {
		t.Errorf("ReadAll = %q, want %q", got, "run2-stats;")
	}
}

func TestLog_ReadMissingFile(t *testing.T) {
	fs := osfilesystem.New()
	l := New(fs, filepath.Join(t.TempDir(), "absent.log"))
	defer l.Close()

	if _, err := l.ReadAll(); err == nil {
		t.Fatal("expected error reading missing pass log")
	}
}

func TestLog_AppendAfterClose(t *testing.T) {
	fs := osfilesystem.New()
	l := New(fs, filepath.Join(t.TempDir(), "pass.log"))

	if err := l.Append([]byte("x")); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}
	if err := l.Append([]byte("y")); err == nil {
		t.Error("expected error appending to closed log")
	}
}
