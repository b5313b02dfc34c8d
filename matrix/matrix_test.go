package matrix

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

func TestWriteFormat(t *testing.T) {
	tests := []struct {
		name  string
		img   []int
		width int
		want  string
	}{
		{"two rows", []int{1, 2, 3, 4, 5, 6}, 3, "1,2,3\n4,5,6"},
		{"one row", []int{0, 10, 200}, 3, "0,10,200"},
		{"one column", []int{7, 8, 9}, 1, "7\n8\n9"},
		{"single cell", []int{42}, 1, "42"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var b bytes.Buffer
			if err := Write(&b, tt.img, tt.width); err != nil {
				t.Fatal(err)
			}
			if got := b.String(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWriteShape(t *testing.T) {
	var b bytes.Buffer
	for _, width := range []int{0, -1, 4} {
		if err := Write(&b, []int{1, 2, 3, 4, 5, 6}, width); !errors.Is(err, ErrShape) {
			t.Errorf("width %d: error = %v, want ErrShape", width, err)
		}
	}
	if err := Write(&b, nil, 3); !errors.Is(err, ErrShape) {
		t.Errorf("empty image: error = %v, want ErrShape", err)
	}
}

func TestReadRoundTrip(t *testing.T) {
	img := []int{1, 0, 50, 3, 3, 2, 0, 0, 17, 4, 5, 6}
	var b bytes.Buffer
	if err := Write(&b, img, 4); err != nil {
		t.Fatal(err)
	}
	rows, err := Read(&b)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	for r, row := range rows {
		if !slices.Equal(row, img[4*r:4*r+4]) {
			t.Errorf("row %d = %v, want %v", r, row, img[4*r:4*r+4])
		}
	}
}

func TestReadErrors(t *testing.T) {
	for _, in := range []string{"1,2\n3", "1,x", "1,2,\n3,4,5", "1,2\n"} {
		if _, err := Read(strings.NewReader(in)); err == nil {
			t.Errorf("Read(%q) succeeded", in)
		}
	}
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")
	if err := WriteFile(path, []int{1, 2, 3, 4}, 2); err != nil {
		t.Fatal(err)
	}
	rows, err := ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 || !slices.Equal(rows[1], []int{3, 4}) {
		t.Errorf("read back %v", rows)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("directory holds %d entries, want only the matrix", len(entries))
	}
}

func TestWriteFileFailureLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")
	if err := WriteFile(path, []int{1, 2, 3}, 2); !errors.Is(err, ErrShape) {
		t.Fatalf("error = %v, want ErrShape", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("failed write left %d files behind", len(entries))
	}

	if err := WriteFile(filepath.Join(dir, "missing", "out.txt"), []int{1}, 1); err == nil {
		t.Error("write into a missing directory succeeded")
	}
}

func TestVerify(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")
	img := []int{1, 2, 3, 4, 5, 6}
	if err := WriteFile(path, img, 3); err != nil {
		t.Fatal(err)
	}
	if err := Verify(path, img, 3); err != nil {
		t.Fatalf("Verify of a fresh file: %v", err)
	}

	tests := []struct {
		name  string
		img   []int
		width int
	}{
		{"value differs", []int{1, 2, 3, 4, 0, 6}, 3},
		{"other width", img, 2},
		{"fewer values", img[:3], 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := Verify(path, tt.img, tt.width); !errors.Is(err, ErrMismatch) {
				t.Errorf("error = %v, want ErrMismatch", err)
			}
		})
	}

	if err := Verify(filepath.Join(dir, "missing.txt"), img, 3); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file: error = %v, want not exist", err)
	}
}
