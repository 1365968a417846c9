package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// ImageVersion is the current version of the image file format.
const ImageVersion = 1

// Image is the on-disk form of a file store.
type Image struct {
	// Version is the image file format version.
	Version int `json:"version"`

	// SavedAt is when the image was last written.
	SavedAt time.Time `json:"saved_at"`

	// Capacity is the store size in bytes.
	Capacity int `json:"capacity"`

	// Cells holds every written address.
	Cells map[uint16]byte `json:"cells,omitempty"`
}

// File is a store persisted as a JSON image. Every write rewrites the image
// through a temporary file and a rename, so a crash leaves either the old or
// the new image.
type File struct {
	mu    sync.Mutex
	path  string
	image Image
}

// OpenFile loads the image at path, or starts an erased image if the file
// does not exist. A capacity of zero keeps the image's capacity, or
// DefaultCapacity for a new image.
func OpenFile(path string, capacity int) (*File, error) {
	if path == "" {
		return nil, fmt.Errorf("store file path is required")
	}

	f := &File{path: path}
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		f.image = Image{Version: ImageVersion, Cells: make(map[uint16]byte)}
	case err != nil:
		return nil, err
	default:
		if err := json.Unmarshal(data, &f.image); err != nil {
			return nil, fmt.Errorf("failed to parse store image %s: %w", path, err)
		}
		if f.image.Version != ImageVersion {
			return nil, fmt.Errorf("unsupported store image version %d", f.image.Version)
		}
		if f.image.Cells == nil {
			f.image.Cells = make(map[uint16]byte)
		}
	}

	if capacity > 0 {
		f.image.Capacity = capacity
	}
	if f.image.Capacity <= 0 {
		f.image.Capacity = DefaultCapacity
	}
	return f, nil
}

// Path returns the image file path.
func (f *File) Path() string {
	return f.path
}

// Read returns the byte at addr.
func (f *File) Read(ctx context.Context, addr uint16) (byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := checkAddress(addr, f.image.Capacity); err != nil {
		return 0, err
	}
	b, ok := f.image.Cells[addr]
	if !ok {
		return Erased, nil
	}
	return b, nil
}

// Write stores b at addr and saves the image before returning.
func (f *File) Write(ctx context.Context, addr uint16, b byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := checkAddress(addr, f.image.Capacity); err != nil {
		return err
	}

	old, had := f.image.Cells[addr]
	f.image.Cells[addr] = b
	if err := f.save(); err != nil {
		if had {
			f.image.Cells[addr] = old
		} else {
			delete(f.image.Cells, addr)
		}
		return err
	}
	return nil
}

func (f *File) save() error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	f.image.Version = ImageVersion
	f.image.SavedAt = time.Now()

	data, err := json.MarshalIndent(f.image, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, f.path)
}

// Close is a no-op; every write is already on disk.
func (f *File) Close() error {
	return nil
}

// Compile-time interface satisfaction check.
var _ Store = (*File)(nil)
