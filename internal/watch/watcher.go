// Package watch turns a drop folder into an ingestion source: documents
// copied into the watched directory are collected, filtered to supported
// types, and emitted as debounced batches ready for upload.
package watch

import (
	"context"
	"fmt"
	"time"

	"docchat/internal/backend"
	"docchat/internal/logging"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/errgroup"
)

// DefaultDebounce is how long the watcher waits after the last file event
// before emitting a batch. Dropping a folder of documents produces a burst
// of events; one batch means one upload.
const DefaultDebounce = 750 * time.Millisecond

// Batch is one debounced set of document paths.
type Batch []string

// Watcher monitors a directory and emits batches of supported documents.
type Watcher struct {
	dir      string
	debounce time.Duration
	fsw      *fsnotify.Watcher
	paths    chan string
	batches  chan Batch
	cancel   context.CancelFunc
	g        *errgroup.Group
}

// New starts watching dir. Close releases all resources.
func New(dir string, debounce time.Duration) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	g, ctx := errgroup.WithContext(ctx)

	w := &Watcher{
		dir:      dir,
		debounce: debounce,
		fsw:      fsw,
		paths:    make(chan string, 64),
		batches:  make(chan Batch, 4),
		cancel:   cancel,
		g:        g,
	}
	g.Go(func() error { return w.collect(ctx) })
	g.Go(func() error { return w.flush(ctx) })

	logging.Get(logging.CategoryWatch).Info("watching %s for documents", dir)
	return w, nil
}

// Batches is the stream of debounced document sets. It closes when the
// watcher is closed.
func (w *Watcher) Batches() <-chan Batch { return w.batches }

// Close stops the watcher and releases its goroutines.
func (w *Watcher) Close() error {
	w.cancel()
	err := w.fsw.Close()
	_ = w.g.Wait()
	close(w.batches)
	return err
}

// collect filters raw filesystem events down to supported document paths.
func (w *Watcher) collect(ctx context.Context) error {
	defer close(w.paths)
	log := logging.Get(logging.CategoryWatch)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if !backend.IsSupportedDocument(ev.Name) {
				continue
			}
			select {
			case w.paths <- ev.Name:
			case <-ctx.Done():
				return nil
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			log.Warn("watch error: %v", err)
		}
	}
}

// flush debounces collected paths into batches.
func (w *Watcher) flush(ctx context.Context) error {
	var (
		pending []string
		seen    = make(map[string]bool)
		timer   *time.Timer
		timerC  <-chan time.Time
	)
	reset := func() {
		if timer == nil {
			timer = time.NewTimer(w.debounce)
			timerC = timer.C
			return
		}
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(w.debounce)
	}
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case path, ok := <-w.paths:
			if !ok {
				return nil
			}
			if seen[path] {
				reset()
				continue
			}
			seen[path] = true
			pending = append(pending, path)
			reset()
		case <-timerC:
			if len(pending) == 0 {
				continue
			}
			batch := make(Batch, len(pending))
			copy(batch, pending)
			pending = pending[:0]
			seen = make(map[string]bool)

			logging.Get(logging.CategoryWatch).Info("emitting batch of %d document(s)", len(batch))
			select {
			case w.batches <- batch:
			case <-ctx.Done():
				return nil
			}
		}
	}
}
