package snapshot

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// ErrInvalidName is returned for snapshot names outside [A-Za-z0-9_-]{1,64}.
var ErrInvalidName = errors.New("invalid snapshot name")

var namePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// ValidateName reports whether name may be used as a snapshot name.
func ValidateName(name string) error {
	if !namePattern.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// Store persists encoded snapshots by name.
type Store interface {
	// Save stores data under name, replacing any previous snapshot.
	Save(ctx context.Context, name string, data []byte) error
	// Load returns the data saved under name or an error wrapping ErrNotFound.
	Load(ctx context.Context, name string) ([]byte, error)
	// List returns every saved name in ascending order.
	List(ctx context.Context) ([]string, error)
}

// SaveValue encodes v and saves it in s under name.
func SaveValue(ctx context.Context, s Store, name string, v any) error {
	data, err := Encode(v)
	if err != nil {
		return err
	}
	return s.Save(ctx, name, data)
}

// LoadValue loads name from s and decodes it into v.
func LoadValue(ctx context.Context, s Store, name string, v any) error {
	data, err := s.Load(ctx, name)
	if err != nil {
		return err
	}
	return Decode(data, v)
}

const fileExt = ".snap"

// FileStore keeps one file per snapshot in a directory.
type FileStore struct {
	dir string
}

// NewFileStore creates dir if needed and returns a store rooted there.
//
// Postcondition: Returns an error if dir cannot be created.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating snapshot dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(name string) string {
	return filepath.Join(s.dir, name+fileExt)
}

// Save writes data to a temporary file and renames it into place.
func (s *FileStore) Save(ctx context.Context, name string, data []byte) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(s.dir, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp snapshot: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("writing snapshot %q: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("closing snapshot %q: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), s.path(name)); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("renaming snapshot %q: %w", name, err)
	}
	return nil
}

// Load reads the file saved under name.
func (s *FileStore) Load(ctx context.Context, name string) ([]byte, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("reading snapshot %q: %w", name, err)
	}
	return data, nil
}

// List returns the names of all snapshot files in the directory.
func (s *FileStore) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("listing snapshot dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), fileExt) {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), fileExt))
	}
	sort.Strings(names)
	return names, nil
}
