package filestore

import (
	"container/heap"
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/procon-tools/go-procon/file"
)

var (
	_ FileStore      = &Timeout{}
	_ heap.Interface = &Timeout{}
)

// Timeout is a file store removing files not accessed within a maximum TTL
type Timeout struct {
	mu sync.Mutex
	FileStore
	timeout   time.Duration
	files     []timeoutFile
	idToIndex map[string]int
}

type timeoutFile struct {
	id   string
	time time.Time
}

// NewTimeout creates a timeout file store with maximum TTL for a file,
// the expiry loop stops once ctx is done
func NewTimeout(ctx context.Context, fs FileStore, timeout time.Duration, checkInterval time.Duration) *Timeout {
	t := &Timeout{
		FileStore: fs,
		timeout:   timeout,
		files:     make([]timeoutFile, 0),
		idToIndex: make(map[string]int),
	}
	go t.checkTimeoutLoop(ctx, checkInterval)
	return t
}

func (t *Timeout) checkTimeoutLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		t.checkTimeoutAndRemove(time.Now())
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (t *Timeout) checkTimeoutAndRemove(now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for len(t.files) > 0 && t.files[0].time.Add(t.timeout).Before(now) {
		f := t.files[0]
		t.FileStore.Remove(f.id)
		heap.Pop(t)
	}
}

func (t *Timeout) Len() int {
	return len(t.files)
}

func (t *Timeout) Less(i, j int) bool {
	return t.files[i].time.Before(t.files[j].time)
}

func (t *Timeout) Swap(i, j int) {
	t.files[i], t.files[j] = t.files[j], t.files[i]
	t.idToIndex[t.files[i].id] = i
	t.idToIndex[t.files[j].id] = j
}

func (t *Timeout) Push(x any) {
	e := x.(timeoutFile)
	t.files = append(t.files, e)
	t.idToIndex[e.id] = len(t.files) - 1
}

func (t *Timeout) Pop() any {
	e := t.files[len(t.files)-1]
	t.files = t.files[:len(t.files)-1]
	delete(t.idToIndex, e.id)
	return e
}

func (t *Timeout) track(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	heap.Push(t, timeoutFile{id, time.Now()})
}

func (t *Timeout) Add(name string, content []byte) (string, error) {
	id, err := t.FileStore.Add(name, content)
	if err != nil {
		return "", err
	}
	t.track(id)
	return id, nil
}

func (t *Timeout) New() (*os.File, error) {
	f, err := t.FileStore.New()
	if err != nil {
		return nil, err
	}
	t.track(filepath.Base(f.Name()))
	return f, nil
}

func (t *Timeout) Remove(id string) bool {
	success := t.FileStore.Remove(id)

	t.mu.Lock()
	defer t.mu.Unlock()

	index, ok := t.idToIndex[id]
	if !ok {
		return success
	}
	heap.Remove(t, index)
	return success
}

func (t *Timeout) Get(id string) (string, file.File) {
	name, f := t.FileStore.Get(id)

	t.mu.Lock()
	defer t.mu.Unlock()

	index, ok := t.idToIndex[id]
	if !ok {
		return name, f
	}
	t.files[index].time = time.Now()
	heap.Fix(t, index)

	return name, f
}
