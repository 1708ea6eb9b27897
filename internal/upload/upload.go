// Package upload stores dorm photos on local disk and derives the public
// URLs they are served under.
package upload

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"time"
)

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9.-]`)

// SanitizeFilename replaces every character outside [A-Za-z0-9.-] with '_'.
func SanitizeFilename(name string) string {
	return unsafeChars.ReplaceAllString(name, "_")
}

// Store writes uploaded files under a root directory that is served as
// /uploads. Writes are append-only: names carry a fresh timestamp, so an
// existing photo is never overwritten.
type Store struct {
	root string
}

func NewStore(root string) *Store {
	return &Store{root: root}
}

// Root returns the filesystem directory backing /uploads.
func (s *Store) Root() string {
	return s.root
}

// SaveDormPhoto writes one uploaded photo into the user's dorm directory and
// returns the relative URL it will be served under:
// /uploads/dorms/{user_id}/{timestamp}-{sanitized_name}.
func (s *Store) SaveDormPhoto(userID int64, filename string, r io.Reader) (string, error) {
	userDir := strconv.FormatInt(userID, 10)
	dir := filepath.Join(s.root, "dorms", userDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	name := fmt.Sprintf("%d-%s", time.Now().UnixMilli(), SanitizeFilename(filename))
	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", fmt.Errorf("create photo file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, r); err != nil {
		return "", fmt.Errorf("write photo: %w", err)
	}

	return "/uploads/dorms/" + userDir + "/" + name, nil
}
