package upload

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/webhookx-io/eventsvc/normalizer"
	"github.com/webhookx-io/eventsvc/utils"
)

const maxNameLength = 100

// Storage keeps uploaded attachments as files in one directory.
type Storage struct {
	dir string
}

func NewStorage(dir string) (*Storage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create uploads directory: %w", err)
	}
	return &Storage{dir: dir}, nil
}

func (s *Storage) Dir() string {
	return s.dir
}

// Check reports whether the directory accepts new files.
func (s *Storage) Check() error {
	f, err := os.CreateTemp(s.dir, ".check-*")
	if err != nil {
		return err
	}
	name := f.Name()
	_ = f.Close()
	return os.Remove(name)
}

// Sanitize reduces an uploaded file name to a safe base name.
func Sanitize(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	name = strings.TrimLeft(b.String(), ".")
	if len(name) > maxNameLength {
		name = name[len(name)-maxNameLength:]
	}
	if name == "" || name == "_" {
		name = "file"
	}
	return name
}

// Save writes r under a new name of the form <ksuid>-<sanitized name>.
func (s *Storage) Save(name string, r io.Reader) (*normalizer.FileRef, error) {
	filename := utils.KSUID() + "-" + Sanitize(name)
	path := filepath.Join(s.dir, filename)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, err
	}
	_, err = io.Copy(f, r)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(path)
		return nil, err
	}
	return &normalizer.FileRef{Filename: filename}, nil
}

// Remove deletes a stored file. A missing file is not an error.
func (s *Storage) Remove(filename string) error {
	err := os.Remove(filepath.Join(s.dir, filepath.Base(filename)))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// Handler serves stored files. Directory listings are not served.
func (s *Storage) Handler() http.Handler {
	fs := http.FileServer(http.Dir(s.dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		fs.ServeHTTP(w, r)
	})
}
