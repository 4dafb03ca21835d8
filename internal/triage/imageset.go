package triage

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"culld/internal/errors"
	"culld/internal/log"

	"github.com/gobwas/glob"
)

// imageExtensions is the set of filename extensions treated as images.
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".bmp":  true,
	".tiff": true,
	".webp": true,
}

// IsImagePath reports whether a path looks like an image file.
func IsImagePath(path string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(path))]
}

// Filter restricts which image filenames are admitted into a set.
// An empty include list admits every image.
type Filter struct {
	include []glob.Glob
	exclude []glob.Glob
}

// NewFilter compiles include/exclude glob patterns.
func NewFilter(include, exclude []string) (*Filter, error) {
	f := &Filter{}
	for _, pattern := range include {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid include pattern %q", pattern)
		}
		f.include = append(f.include, g)
	}
	for _, pattern := range exclude {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid exclude pattern %q", pattern)
		}
		f.exclude = append(f.exclude, g)
	}
	return f, nil
}

// Match reports whether a base filename passes the filter.
func (f *Filter) Match(name string) bool {
	if f == nil {
		return true
	}
	for _, g := range f.exclude {
		if g.Match(name) {
			return false
		}
	}
	if len(f.include) == 0 {
		return true
	}
	for _, g := range f.include {
		if g.Match(name) {
			return true
		}
	}
	return false
}

// ImageSet enumerates and holds the ordered list of image files in a
// folder. The order is fixed at load time (by filename); a cursor tracks
// which entries have already been served to the grid. Entries displaced
// by an undo are requeued ahead of the cursor so they are served next.
type ImageSet struct {
	entries  []ImageEntry
	cursor   int
	requeued []ImageEntry
	known    map[string]bool
	filter   *Filter
	folder   string
}

// Load enumerates the image files of a folder in stable filename order.
func Load(folder string, filter *Filter) (*ImageSet, error) {
	info, err := os.Stat(folder)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewFileError("folder not found", folder, errors.FolderNotFound, err)
		}
		return nil, errors.NewFileError("cannot access folder", folder, errors.IOFailure, err)
	}
	if !info.IsDir() {
		return nil, errors.NewFileError("not a folder", folder, errors.FolderNotFound, nil)
	}

	dirEntries, err := os.ReadDir(folder)
	if err != nil {
		return nil, errors.NewFileError("cannot read folder", folder, errors.IOFailure, err)
	}

	s := &ImageSet{
		known:  make(map[string]bool),
		filter: filter,
		folder: folder,
	}

	names := make([]string, 0, len(dirEntries))
	for _, de := range dirEntries {
		if de.IsDir() {
			continue
		}
		if !IsImagePath(de.Name()) || !filter.Match(de.Name()) {
			continue
		}
		names = append(names, de.Name())
	}
	sort.Strings(names)

	for i, name := range names {
		path := filepath.Join(folder, name)
		s.entries = append(s.entries, ImageEntry{Path: path, OriginalIndex: i})
		s.known[path] = true
	}

	log.Infof("loaded %d images from %s", len(s.entries), folder)
	return s, nil
}

// Folder returns the folder this set was loaded from.
func (s *ImageSet) Folder() string {
	return s.folder
}

// Next returns up to count entries not yet displayed, in stable order.
// Requeued entries are served before untouched ones.
func (s *ImageSet) Next(count int) []ImageEntry {
	var out []ImageEntry
	for len(out) < count && len(s.requeued) > 0 {
		out = append(out, s.requeued[0])
		s.requeued = s.requeued[1:]
	}
	for len(out) < count && s.cursor < len(s.entries) {
		out = append(out, s.entries[s.cursor])
		s.cursor++
	}
	return out
}

// Requeue puts an entry back at the front of the remaining pool, ahead of
// previously requeued entries. Called when an undo displaces a backfill.
func (s *ImageSet) Requeue(e ImageEntry) {
	s.requeued = append([]ImageEntry{e}, s.requeued...)
}

// Add admits a newly discovered file into the remaining pool. Returns
// false if the path is not an admissible image or is already known.
func (s *ImageSet) Add(path string) (ImageEntry, bool) {
	if s.known[path] {
		return ImageEntry{}, false
	}
	name := filepath.Base(path)
	if !IsImagePath(name) || !s.filter.Match(name) {
		return ImageEntry{}, false
	}
	e := ImageEntry{Path: path, OriginalIndex: len(s.entries)}
	s.entries = append(s.entries, e)
	s.known[path] = true
	log.Debugf("picked up new image %s", path)
	return e, true
}

// RemainingCount returns the number of entries not yet served.
func (s *ImageSet) RemainingCount() int {
	return len(s.requeued) + len(s.entries) - s.cursor
}

// TotalCount returns the number of entries enumerated for this session.
func (s *ImageSet) TotalCount() int {
	return len(s.entries)
}
