package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_Relevant(t *testing.T) {
	w := NewWatcher(".", "autogen_smog.go", 0, nil, nil)

	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{"write source", fsnotify.Event{Name: "/p/contracts.go", Op: fsnotify.Write}, true},
		{"create source", fsnotify.Event{Name: "/p/new.go", Op: fsnotify.Create}, true},
		{"remove source", fsnotify.Event{Name: "/p/old.go", Op: fsnotify.Remove}, true},
		{"rename source", fsnotify.Event{Name: "/p/old.go", Op: fsnotify.Rename}, true},
		{"chmod only", fsnotify.Event{Name: "/p/contracts.go", Op: fsnotify.Chmod}, false},
		{"generated file", fsnotify.Event{Name: "/p/autogen_smog.go", Op: fsnotify.Write}, false},
		{"test file", fsnotify.Event{Name: "/p/contracts_test.go", Op: fsnotify.Write}, false},
		{"not go", fsnotify.Event{Name: "/p/README.md", Op: fsnotify.Write}, false},
		{"editor swap", fsnotify.Event{Name: "/p/.contracts.go.swp", Op: fsnotify.Write}, false},
		{"hidden go", fsnotify.Event{Name: "/p/.contracts.go", Op: fsnotify.Write}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, w.relevant(tt.event))
		})
	}
}

func TestWatcher_DebouncesChanges(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "contracts"), 0755))

	runs := make(chan struct{}, 10)
	w := NewWatcher(root, "autogen_smog.go", 100*time.Millisecond, func(ctx context.Context) error {
		runs <- struct{}{}
		return nil
	}, nil)
	ready := make(chan struct{})
	w.ready = func() { close(ready) }

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Watch(ctx) }()
	<-ready

	for i := 0; i < 3; i++ {
		writeFile(t, filepath.Join(root, "contracts", "contracts.go"), "package contracts\n")
	}

	select {
	case <-runs:
	case <-time.After(5 * time.Second):
		t.Fatal("no run after a source change")
	}
	select {
	case <-runs:
		t.Fatal("changes within the debounce period ran more than once")
	case <-time.After(300 * time.Millisecond):
	}

	writeFile(t, filepath.Join(root, "contracts", "autogen_smog.go"), "package contracts\n")
	select {
	case <-runs:
		t.Fatal("writing the generated file triggered a run")
	case <-time.After(300 * time.Millisecond):
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatcher_MissingRoot(t *testing.T) {
	w := NewWatcher(filepath.Join(t.TempDir(), "missing"), "autogen_smog.go", 0, nil, nil)
	assert.Error(t, w.Watch(context.Background()))
}
