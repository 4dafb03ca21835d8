package thumbs

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"culld/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, dir, name string, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 255, A: 255})
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

func TestLoadScalesWithinBox(t *testing.T) {
	dir := t.TempDir()
	path := writePNG(t, dir, "wide.png", 400, 100)

	c := NewCache(100, 1)
	defer c.Close()

	thumb, err := c.Load(path)
	require.NoError(t, err)
	bounds := thumb.Bounds()
	assert.Equal(t, 100, bounds.Dx())
	assert.Equal(t, 25, bounds.Dy(), "aspect ratio preserved")
}

func TestLoadDoesNotUpscale(t *testing.T) {
	dir := t.TempDir()
	path := writePNG(t, dir, "tiny.png", 20, 20)

	c := NewCache(256, 1)
	defer c.Close()

	thumb, err := c.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 20, thumb.Bounds().Dx())
}

func TestLoadCachesAndEvicts(t *testing.T) {
	dir := t.TempDir()
	path := writePNG(t, dir, "a.png", 50, 50)

	c := NewCache(64, 1)
	defer c.Close()

	_, ok := c.Get(path)
	assert.False(t, ok)

	_, err := c.Load(path)
	require.NoError(t, err)
	_, ok = c.Get(path)
	assert.True(t, ok)

	c.Evict(path)
	_, ok = c.Get(path)
	assert.False(t, ok)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := NewCache(64, 1).Load(filepath.Join(dir, "missing.png"))
	require.Error(t, err)
	assert.True(t, errors.IsIOFailure(err))

	bad := filepath.Join(dir, "bad.png")
	require.NoError(t, os.WriteFile(bad, []byte("not an image"), 0644))
	_, err = NewCache(64, 1).Load(bad)
	require.Error(t, err)
	assert.True(t, errors.IsIOFailure(err))
}

func TestRequestAfterCloseDropped(t *testing.T) {
	dir := t.TempDir()
	path := writePNG(t, dir, "late.png", 10, 10)

	c := NewCache(64, 1)
	c.Close()
	c.Close()

	c.Request(path, func(string, image.Image, error) {
		t.Error("request after close must not run")
	})
}

func TestConcurrentRequestAndClose(t *testing.T) {
	dir := t.TempDir()
	path := writePNG(t, dir, "racer.png", 10, 10)

	c := NewCache(64, 2)

	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				c.Request(path, nil)
			}
		}()
	}
	c.Close()
	wg.Wait()
}

func TestRequestRunsOnPool(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writePNG(t, dir, "a.png", 30, 30),
		writePNG(t, dir, "b.png", 30, 30),
		writePNG(t, dir, "c.png", 30, 30),
	}

	c := NewCache(64, 2)
	defer c.Close()

	var wg sync.WaitGroup
	var mu sync.Mutex
	got := make(map[string]bool)

	wg.Add(len(paths))
	for _, p := range paths {
		c.Request(p, func(path string, img image.Image, err error) {
			defer wg.Done()
			assert.NoError(t, err)
			assert.NotNil(t, img)
			mu.Lock()
			got[path] = true
			mu.Unlock()
		})
	}
	wg.Wait()

	assert.Len(t, got, 3)
	for _, p := range paths {
		_, ok := c.Get(p)
		assert.True(t, ok)
	}
}
