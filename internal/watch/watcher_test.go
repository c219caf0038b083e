package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func waitFor(t *testing.T, ch <-chan string, d time.Duration) string {
	t.Helper()
	select {
	case path := <-ch:
		return path
	case <-time.After(d):
		t.Fatal("timed out waiting for change notification")
		return ""
	}
}

func TestWatcherNotifiesOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "casebook.grammar")
	if err := os.WriteFile(path, []byte("A: \"a\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	w, err := New(path, WithDebounce(20*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	fired := make(chan string, 4)
	w.OnChange(func(p string) { fired <- p })
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := os.WriteFile(path, []byte("A: \"b\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	got := waitFor(t, fired, 5*time.Second)
	if filepath.Clean(got) != filepath.Clean(path) {
		t.Errorf("handler got %q, want %q", got, path)
	}
}

func TestWatcherNotifiesOnCreate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "casebook.grammar")

	// The file does not exist yet; its creation counts as a change.
	w, err := New(path, WithDebounce(20*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	fired := make(chan string, 4)
	w.OnChange(func(p string) { fired <- p })
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := os.WriteFile(path, []byte("A: \"a\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, fired, 5*time.Second)
}

func TestWatcherIgnoresSiblings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "casebook.grammar")
	if err := os.WriteFile(path, []byte("A: \"a\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	w, err := New(path, WithDebounce(20*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	fired := make(chan string, 4)
	w.OnChange(func(p string) { fired <- p })
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case p := <-fired:
		t.Errorf("unexpected notification for %q", p)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcherDebouncesBursts(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "casebook.grammar")
	if err := os.WriteFile(path, []byte("A: \"a\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	w, err := New(path, WithDebounce(150*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	fired := make(chan string, 16)
	w.OnChange(func(p string) { fired <- p })
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	// A burst of writes inside the debounce window coalesces.
	for i := 0; i < 5; i++ {
		if err := os.WriteFile(path, []byte("A: \"a\"\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	waitFor(t, fired, 5*time.Second)
	select {
	case <-fired:
		t.Error("burst of writes produced more than one notification")
	case <-time.After(400 * time.Millisecond):
	}
}

func TestWatcherStopIsIdempotentBeforeStart(t *testing.T) {
	w, err := New(filepath.Join(t.TempDir(), "g"), WithDebounce(0))
	if err != nil {
		t.Fatal(err)
	}
	// Never started: Stop must not hang or panic.
	w.Stop()
	if w.debounce == 0 {
		t.Error("zero debounce option should keep the default")
	}
}
