// Package thumbs decodes and scales grid thumbnails on a small worker
// pool so the UI thread never blocks on image IO.
package thumbs

import (
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"runtime"
	"sync"

	"culld/internal/errors"
	"culld/internal/log"

	"github.com/nfnt/resize"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

type job struct {
	path string
	done func(path string, img image.Image, err error)
}

// Cache decodes images once and keeps the scaled result per path.
type Cache struct {
	size uint

	mu     sync.Mutex
	images map[string]image.Image

	jobs chan job
	wg   sync.WaitGroup

	// closeMu serializes Request against Close so a request can never
	// send on the closed jobs channel
	closeMu sync.Mutex
	closed  bool
}

// NewCache creates a cache producing thumbnails that fit within a
// size x size box. Pass workers <= 0 to size the pool from the CPU count.
func NewCache(size int, workers int) *Cache {
	if size < 16 {
		size = 16
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
		if workers > 4 {
			workers = 4
		}
	}

	c := &Cache{
		size:   uint(size),
		images: make(map[string]image.Image),
		jobs:   make(chan job, 64),
	}

	c.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go c.worker()
	}
	return c
}

func (c *Cache) worker() {
	defer c.wg.Done()
	for j := range c.jobs {
		img, err := c.Load(j.path)
		if j.done != nil {
			j.done(j.path, img, err)
		}
	}
}

// Get returns the cached thumbnail if one is available.
func (c *Cache) Get(path string) (image.Image, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	img, ok := c.images[path]
	return img, ok
}

// Load decodes and scales a thumbnail synchronously, caching the result.
func (c *Cache) Load(path string) (image.Image, error) {
	if img, ok := c.Get(path); ok {
		return img, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewFileError("cannot open image", path, errors.IOFailure, err)
	}
	defer f.Close()

	src, format, err := image.Decode(f)
	if err != nil {
		return nil, errors.NewFileError("cannot decode image", path, errors.IOFailure, err)
	}
	log.Debugf("decoded %s (%s)", path, format)

	thumb := resize.Thumbnail(c.size, c.size, src, resize.Lanczos3)

	c.mu.Lock()
	c.images[path] = thumb
	c.mu.Unlock()
	return thumb, nil
}

// Request queues a thumbnail load on the pool. done runs on a worker
// goroutine; callers updating UI state must marshal back themselves.
// After Close the request is silently dropped.
func (c *Cache) Request(path string, done func(path string, img image.Image, err error)) {
	c.closeMu.Lock()
	defer c.closeMu.Unlock()
	if c.closed {
		return
	}
	// Holding closeMu across the send is safe: workers drain jobs
	// without ever taking it
	c.jobs <- job{path: path, done: done}
}

// Evict drops the cached thumbnail for a path, typically after the
// underlying file was trashed.
func (c *Cache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, path)
	c.mu.Unlock()
}

// Close stops the workers. Pending requests are drained first; Close
// is idempotent and later requests are dropped.
func (c *Cache) Close() {
	c.closeMu.Lock()
	if c.closed {
		c.closeMu.Unlock()
		return
	}
	c.closed = true
	close(c.jobs)
	c.closeMu.Unlock()
	c.wg.Wait()
}
