package main

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

func touch(t *testing.T, dir, name string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
		t.Fatalf("touch %s: %v", name, err)
	}
}

func basenames(files []*ImageFile) []string {
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = filepath.Base(f.Path)
	}
	return names
}

func sliceEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestListImages_FiltersAndIgnoresCase(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "a.jpg")
	touch(t, dir, "b.txt")
	touch(t, dir, "c.PNG")
	if err := os.MkdirAll(filepath.Join(dir, "d"), 0755); err != nil {
		t.Fatal(err)
	}

	files, err := ListImages(dir)
	if err != nil {
		t.Fatalf("ListImages: %v", err)
	}

	want := []string{"a.jpg", "c.PNG"}
	if got := basenames(files); !sliceEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestListImages_AllSupportedExtensions(t *testing.T) {
	dir := t.TempDir()
	exts := []string{".jpg", ".jpeg", ".png", ".gif", ".bmp", ".tiff", ".webp"}
	for _, ext := range exts {
		touch(t, dir, "file"+ext)
	}
	touch(t, dir, "file.mp4")
	touch(t, dir, "file.heic")

	files, err := ListImages(dir)
	if err != nil {
		t.Fatalf("ListImages: %v", err)
	}
	if len(files) != len(exts) {
		t.Errorf("got %d files, want %d", len(files), len(exts))
	}
}

func TestListImages_NoRecursion(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "top.jpg")
	sub := filepath.Join(dir, "nested")
	if err := os.MkdirAll(sub, 0755); err != nil {
		t.Fatal(err)
	}
	touch(t, sub, "inner.jpg")

	files, err := ListImages(dir)
	if err != nil {
		t.Fatalf("ListImages: %v", err)
	}
	if len(files) != 1 || filepath.Base(files[0].Path) != "top.jpg" {
		t.Errorf("got %v, want only top.jpg", basenames(files))
	}
}

func TestListImages_NotADirectory(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "plain.jpg")

	if _, err := ListImages(filepath.Join(dir, "plain.jpg")); !errors.Is(err, errNotDirectory) {
		t.Errorf("err = %v, want errNotDirectory", err)
	}
}

func TestListImages_MissingPath(t *testing.T) {
	if _, err := ListImages(filepath.Join(t.TempDir(), "nope")); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("err = %v, want fs.ErrNotExist", err)
	}
}

func TestListImages_RecordsSize(t *testing.T) {
	dir := t.TempDir()
	data := []byte("0123456789")
	if err := os.WriteFile(filepath.Join(dir, "sized.jpg"), data, 0644); err != nil {
		t.Fatal(err)
	}

	files, err := ListImages(dir)
	if err != nil {
		t.Fatalf("ListImages: %v", err)
	}
	if len(files) != 1 || files[0].Size != int64(len(data)) {
		t.Errorf("got %+v, want one file of %d bytes", files, len(data))
	}
}
