// Package matrix reads and writes the plain-text iteration matrix: one line
// per image row, comma separated values, no newline after the last row.
package matrix

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

var ErrShape = errors.New("image does not fit the given width")

// Write serializes the row-major img of the given width to w.
func Write(w io.Writer, img []int, width int) error {
	if width <= 0 || len(img) == 0 || len(img)%width != 0 {
		return fmt.Errorf("%w: %d values, width %d", ErrShape, len(img), width)
	}

	bw := bufio.NewWriter(w)
	var num []byte
	for pos, v := range img {
		if pos > 0 {
			if pos%width == 0 {
				bw.WriteByte('\n')
			} else {
				bw.WriteByte(',')
			}
		}
		num = strconv.AppendInt(num[:0], int64(v), 10)
		bw.Write(num)
	}
	return bw.Flush()
}

// WriteFile writes the matrix to path. The data goes to a temporary file in
// the same directory first, so path holds either the complete matrix or
// whatever it held before.
func WriteFile(path string, img []int, width int) (err error) {
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			f.Close()
			os.Remove(f.Name())
		}
	}()

	if err := Write(f, img, width); err != nil {
		return fmt.Errorf("write %s: %w", f.Name(), err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", f.Name(), err)
	}
	if err := os.Chmod(f.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", f.Name(), err)
	}
	if err := os.Rename(f.Name(), path); err != nil {
		return fmt.Errorf("rename to %s: %w", path, err)
	}
	return nil
}

// Read parses a matrix written by Write.
func Read(r io.Reader) ([][]int, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}

	lines := strings.Split(string(data), "\n")
	rows := make([][]int, 0, len(lines))
	for i, line := range lines {
		fields := strings.Split(line, ",")
		if i > 0 && len(fields) != len(rows[0]) {
			return nil, fmt.Errorf("%w: row %d has %d values, row 0 has %d", ErrShape, i, len(fields), len(rows[0]))
		}
		row := make([]int, len(fields))
		for j, f := range fields {
			v, err := strconv.Atoi(f)
			if err != nil {
				return nil, fmt.Errorf("row %d col %d: %w", i, j, err)
			}
			row[j] = v
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ReadFile parses the matrix stored at path.
func ReadFile(path string) ([][]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f)
}

var ErrMismatch = errors.New("matrix file differs from the image")

// Verify reads path back and checks that it holds img at the given width.
func Verify(path string, img []int, width int) error {
	rows, err := ReadFile(path)
	if err != nil {
		return fmt.Errorf("read back %s: %w", path, err)
	}
	if width <= 0 || len(rows)*width != len(img) {
		return fmt.Errorf("%w: %s has %d rows, want %d of width %d", ErrMismatch, path, len(rows), len(img)/max(width, 1), width)
	}
	for i, row := range rows {
		if len(row) != width {
			return fmt.Errorf("%w: row %d has %d values, want %d", ErrMismatch, i, len(row), width)
		}
		for j, v := range row {
			if want := img[i*width+j]; v != want {
				return fmt.Errorf("%w: row %d col %d is %d, want %d", ErrMismatch, i, j, v, want)
			}
		}
	}
	return nil
}
