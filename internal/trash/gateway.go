// Package trash implements the reversible deletion gateway. Files are
// moved into a per-user trash folder and tracked in a JSON history so
// they can be restored by token within the same process lifetime, or
// inspected after a crash.
package trash

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"culld/internal/errors"
	"culld/internal/log"

	"github.com/google/uuid"
)

// Record tracks one trashed file.
type Record struct {
	ID        string    `json:"id"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Timestamp time.Time `json:"timestamp"`
	Restored  bool      `json:"restored,omitempty"`
}

// history is the on-disk history file structure.
type history struct {
	Version int      `json:"version"`
	Records []Record `json:"records"`
}

const historyVersion = 1

// Gateway moves files in and out of a trash folder. The token returned
// by Delete is the record ID; Restore consumes it exactly once.
type Gateway struct {
	root    string
	pending map[string]Record
	records []Record
}

// DefaultRoot returns the per-user trash folder.
func DefaultRoot() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", "culld", "trash"), nil
}

// NewGateway creates a gateway rooted at dir, creating the folder
// layout and loading any existing history.
func NewGateway(dir string) (*Gateway, error) {
	if err := os.MkdirAll(filepath.Join(dir, "files"), 0755); err != nil {
		return nil, errors.NewFileError("cannot create trash folder", dir, errors.IOFailure, err)
	}

	g := &Gateway{
		root:    dir,
		pending: make(map[string]Record),
	}
	if err := g.loadHistory(); err != nil {
		// A corrupt history only loses restorability of older sessions
		log.Warnf("trash history unreadable, starting fresh: %v", err)
	}
	return g, nil
}

func (g *Gateway) historyPath() string {
	return filepath.Join(g.root, "history.json")
}

func (g *Gateway) loadHistory() error {
	data, err := os.ReadFile(g.historyPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	var h history
	if err := json.Unmarshal(data, &h); err != nil {
		return err
	}
	g.records = h.Records
	return nil
}

func (g *Gateway) saveHistory() error {
	h := history{Version: historyVersion, Records: g.records}
	data, err := json.MarshalIndent(h, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(g.historyPath(), data, 0644)
}

// Delete moves a file into the trash and returns a restoration token.
func (g *Gateway) Delete(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", errors.NewFileError("cannot trash file", path, errors.TrashFailed, err)
	}
	if info.IsDir() {
		return "", errors.NewFileError("cannot trash a directory", path, errors.TrashFailed, nil)
	}

	id := uuid.NewString()
	dest := filepath.Join(g.root, "files", id+"_"+filepath.Base(path))
	if err := os.Rename(path, dest); err != nil {
		return "", errors.NewFileError("cannot move file to trash", path, errors.TrashFailed, err)
	}

	rec := Record{
		ID:        id,
		From:      path,
		To:        dest,
		Timestamp: time.Now(),
	}
	g.pending[id] = rec
	g.records = append(g.records, rec)
	if err := g.saveHistory(); err != nil {
		log.Warnf("could not persist trash history: %v", err)
	}

	log.Debugf("trashed %s as %s", path, id)
	return id, nil
}

// Restore recovers a trashed file by token. It fails if the token was
// already consumed or the trash entry was removed externally. If the
// original path is occupied again, the file is restored under a
// numbered name next to it.
func (g *Gateway) Restore(token string) (string, error) {
	rec, ok := g.pending[token]
	if !ok {
		return "", errors.NewFileError("unknown or consumed trash token", token, errors.RestoreFailed, nil)
	}

	if _, err := os.Stat(rec.To); err != nil {
		return "", errors.NewFileError("trash entry no longer exists", rec.From, errors.RestoreFailed, err)
	}

	dest := rec.From
	if _, err := os.Stat(dest); err == nil {
		dest, err = uniqueName(dest)
		if err != nil {
			return "", errors.NewFileError("cannot find restore name", rec.From, errors.RestoreFailed, err)
		}
	}

	if err := os.Rename(rec.To, dest); err != nil {
		return "", errors.NewFileError("cannot move file out of trash", rec.From, errors.RestoreFailed, err)
	}

	delete(g.pending, token)
	for i := range g.records {
		if g.records[i].ID == token {
			g.records[i].Restored = true
		}
	}
	if err := g.saveHistory(); err != nil {
		log.Warnf("could not persist trash history: %v", err)
	}

	log.Debugf("restored %s from %s", dest, token)
	return dest, nil
}

// Pending returns how many trashed files are still restorable.
func (g *Gateway) Pending() int {
	return len(g.pending)
}

// uniqueName finds an unused filename by adding a counter to the base.
func uniqueName(originalPath string) (string, error) {
	ext := filepath.Ext(originalPath)
	base := strings.TrimSuffix(originalPath, ext)

	for counter := 1; counter <= 1000; counter++ {
		newName := fmt.Sprintf("%s_(%d)%s", base, counter, ext)
		if _, err := os.Stat(newName); os.IsNotExist(err) {
			return newName, nil
		}
	}

	return "", fmt.Errorf("failed to find unique name for %s after 1000 attempts", originalPath)
}
