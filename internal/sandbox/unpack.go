package sandbox

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zip"
)

type UnpackLimits struct {
	// MaxArchiveBytes bounds the compressed archive size.
	MaxArchiveBytes int64
	// MaxUnpackedBytes bounds the total size of extracted files.
	MaxUnpackedBytes int64
}

func DefaultUnpackLimits() UnpackLimits {
	return UnpackLimits{
		MaxArchiveBytes:  5 * 1024 * 1024,
		MaxUnpackedBytes: 256 * 1024 * 1024,
	}
}

// Unpack extracts a zip archive into the box root. Entries escaping the box
// and symlinks are rejected.
func (box *Box) Unpack(archive []byte, limits UnpackLimits) error {
	if limits.MaxArchiveBytes > 0 && int64(len(archive)) > limits.MaxArchiveBytes {
		return fmt.Errorf("archive is %d bytes, limit is %d", len(archive), limits.MaxArchiveBytes)
	}
	zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return fmt.Errorf("failed to open submission archive: %w", err)
	}

	var used int64
	for _, f := range zr.File {
		full, err := box.resolve(f.Name)
		if err != nil {
			return err
		}
		mode := f.Mode()
		if mode&os.ModeSymlink != 0 {
			return fmt.Errorf("archive entry %q is a symlink", f.Name)
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(full, 0755); err != nil {
				return err
			}
			continue
		}
		remaining := int64(-1)
		if limits.MaxUnpackedBytes > 0 {
			remaining = limits.MaxUnpackedBytes - used
		}
		n, err := extractFile(f, full, remaining)
		if err != nil {
			return err
		}
		used += n
	}
	return nil
}

// extractFile copies one entry; a negative budget means unbounded.
func extractFile(f *zip.File, dst string, budget int64) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return 0, err
	}
	rc, err := f.Open()
	if err != nil {
		return 0, fmt.Errorf("failed to open archive entry %q: %w", f.Name, err)
	}
	defer rc.Close()

	perm := f.Mode().Perm() | 0600
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return 0, err
	}
	defer out.Close()

	var src io.Reader = rc
	if budget >= 0 {
		src = io.LimitReader(rc, budget+1)
	}
	n, err := io.Copy(out, src)
	if err != nil {
		return n, fmt.Errorf("failed to extract %q: %w", f.Name, err)
	}
	if budget >= 0 && n > budget {
		return n, fmt.Errorf("archive expands beyond the unpacked size limit")
	}
	return n, nil
}
