package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FileStorage keeps generated files (archived proposal PDFs) on disk.
type FileStorage interface {
	SaveFromReader(src io.Reader, fileName string) (string, error)
	Open(filePath string) (io.ReadCloser, error)
	DeleteFile(filePath string) error
	FileExists(filePath string) (bool, error)
	DeleteOlderThan(age time.Duration) (int, error)
}

type LocalFileStorage struct {
	basePath string
}

func NewLocalFileStorage(basePath string) *LocalFileStorage {
	return &LocalFileStorage{basePath: basePath}
}

func (s *LocalFileStorage) BasePath() string {
	return s.basePath
}

// resolve keeps every path inside basePath.
func (s *LocalFileStorage) resolve(filePath string) (string, error) {
	clean := filepath.Clean("/" + filePath)
	full := filepath.Join(s.basePath, clean)
	if !strings.HasPrefix(full, filepath.Clean(s.basePath)) {
		return "", fmt.Errorf("path %q escapes storage root", filePath)
	}
	return full, nil
}

// SaveFromReader writes src to fileName (which may contain sub directories)
// and returns the path relative to the storage root.
func (s *LocalFileStorage) SaveFromReader(src io.Reader, fileName string) (string, error) {
	full, err := s.resolve(fileName)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return "", fmt.Errorf("failed to create storage directory: %w", err)
	}

	dst, err := os.Create(full)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		// Clean up on error
		os.Remove(full)
		return "", fmt.Errorf("failed to copy file content: %w", err)
	}

	rel, err := filepath.Rel(s.basePath, full)
	if err != nil {
		return "", fmt.Errorf("failed to resolve stored path: %w", err)
	}
	return filepath.ToSlash(rel), nil
}

func (s *LocalFileStorage) Open(filePath string) (io.ReadCloser, error) {
	full, err := s.resolve(filePath)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(full)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return file, nil
}

// DeleteFile is a no-op for files that do not exist.
func (s *LocalFileStorage) DeleteFile(filePath string) error {
	full, err := s.resolve(filePath)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func (s *LocalFileStorage) FileExists(filePath string) (bool, error) {
	full, err := s.resolve(filePath)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(full); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check file existence: %w", err)
	}
	return true, nil
}

// DeleteOlderThan removes regular files whose modification time is older
// than age and returns how many were removed.
func (s *LocalFileStorage) DeleteOlderThan(age time.Duration) (int, error) {
	if _, err := os.Stat(s.basePath); os.IsNotExist(err) {
		return 0, nil
	}
	cutoff := time.Now().Add(-age)
	removed := 0
	err := filepath.WalkDir(s.basePath, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(path); err != nil {
				return fmt.Errorf("error deleting expired file %s: %w", path, err)
			}
			removed++
		}
		return nil
	})
	if err != nil {
		return removed, fmt.Errorf("error walking %s: %w", s.basePath, err)
	}
	return removed, nil
}
