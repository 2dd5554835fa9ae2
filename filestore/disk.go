package filestore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const maxNameAttempts = 5

// DiskStorage writes files into one flat directory.
type DiskStorage struct {
	dir string
	now func() time.Time
}

func NewDiskStorage(dir string) (*DiskStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &DiskStorage{dir: dir, now: time.Now}, nil
}

var _ Storage = (*DiskStorage)(nil)

func (s *DiskStorage) Dir() string { return s.dir }

func (s *DiskStorage) Save(_ context.Context, originalName string, data []byte) (string, error) {
	now := s.now()

	// Names collide when the same file is uploaded twice in one millisecond;
	// step the stamp forward instead of overwriting.
	var (
		name string
		f    *os.File
		err  error
	)
	for attempt := 0; attempt < maxNameAttempts; attempt++ {
		name = uniqueName(now.Add(time.Duration(attempt)*time.Millisecond), originalName)
		f, err = os.OpenFile(filepath.Join(s.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if !errors.Is(err, os.ErrExist) {
			break
		}
	}
	if err != nil {
		return "", fmt.Errorf("create photo file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("write photo file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close photo file: %w", err)
	}
	return name, nil
}

func (s *DiskStorage) Remove(_ context.Context, fileName string) error {
	if fileName != SanitizeName(fileName) {
		return fmt.Errorf("refusing to remove %q", fileName)
	}
	err := os.Remove(filepath.Join(s.dir, fileName))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
