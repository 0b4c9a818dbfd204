package report

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/mmehrtens/get-RPstatistics/internal/model"
)

// File is an output file that only becomes visible at its final path when
// Close succeeds. Paths ending in ".gz" are gzip-compressed.
type File struct {
	path string
	tmp  *os.File
	buf  *bufio.Writer
	gz   *gzip.Writer
	w    io.Writer
	done bool
}

// Create opens a temporary file next to path. Callers must call Close to
// publish it or Abort to discard it.
func Create(path string) (*File, error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}

	f := &File{path: path, tmp: tmp, buf: bufio.NewWriter(tmp)}
	f.w = f.buf
	if strings.HasSuffix(strings.ToLower(path), ".gz") {
		f.gz = gzip.NewWriter(f.buf)
		f.gz.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		f.w = f.gz
	}
	return f, nil
}

func (f *File) Write(p []byte) (int, error) {
	return f.w.Write(p)
}

// Close flushes all layers, syncs and renames the file into place.
func (f *File) Close() error {
	if f.done {
		return nil
	}
	f.done = true

	if f.gz != nil {
		if err := f.gz.Close(); err != nil {
			f.discard()
			return fmt.Errorf("compress %s: %w", f.path, err)
		}
	}
	if err := f.buf.Flush(); err != nil {
		f.discard()
		return fmt.Errorf("write %s: %w", f.path, err)
	}
	if err := f.tmp.Sync(); err != nil {
		f.discard()
		return fmt.Errorf("sync %s: %w", f.path, err)
	}
	if err := f.tmp.Close(); err != nil {
		_ = os.Remove(f.tmp.Name())
		return fmt.Errorf("close %s: %w", f.path, err)
	}
	if err := os.Chmod(f.tmp.Name(), 0o644); err != nil {
		_ = os.Remove(f.tmp.Name())
		return fmt.Errorf("chmod %s: %w", f.path, err)
	}
	if err := os.Rename(f.tmp.Name(), f.path); err != nil {
		_ = os.Remove(f.tmp.Name())
		return fmt.Errorf("rename %s: %w", f.path, err)
	}
	return nil
}

// Abort discards the temporary file. It is a no-op after Close.
func (f *File) Abort() {
	if f.done {
		return
	}
	f.done = true
	f.discard()
}

func (f *File) discard() {
	_ = f.tmp.Close()
	_ = os.Remove(f.tmp.Name())
}

// WriteFile renders reports into path via Create.
func WriteFile(path string, reports []*model.Report, opts Options) error {
	f, err := Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, reports, opts); err != nil {
		f.Abort()
		return err
	}
	return f.Close()
}
