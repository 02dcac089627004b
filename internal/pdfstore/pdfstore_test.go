// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pdfstore

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestStore(t *testing.T) *LocalStore {
	t.Helper()
	s, err := NewLocalStore(filepath.Join(t.TempDir(), "pdfs"))
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}
	return s
}

func TestPutOpenDelete(t *testing.T) {
	s := newTestStore(t)

	if s.Exists("42") {
		t.Error("Exists = true before Put")
	}

	if err := s.Put("42", strings.NewReader("%PDF-1.4 fake content")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if !s.Exists("42") {
		t.Error("Exists = false after Put")
	}

	r, err := s.Open("42")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	data, _ := io.ReadAll(r)
	r.Close()
	if string(data) != "%PDF-1.4 fake content" {
		t.Errorf("content = %q", data)
	}

	if err := s.Delete("42"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if s.Exists("42") {
		t.Error("Exists = true after Delete")
	}
	// Deleting again is not an error.
	if err := s.Delete("42"); err != nil {
		t.Errorf("Delete(missing): %v", err)
	}
}

func TestPutLeavesNoTempFiles(t *testing.T) {
	s := newTestStore(t)

	if err := s.Put("1", strings.NewReader("data")); err != nil {
		t.Fatalf("Put: %v", err)
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "1.pdf" {
		var names []string
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("directory contents = %v, want only 1.pdf", names)
	}
}

func TestPathSanitizesKey(t *testing.T) {
	s := newTestStore(t)

	path := s.Path("math.GT/0309136")
	if filepath.Dir(path) != s.dir {
		t.Errorf("path %q escapes the store directory", path)
	}
	if filepath.Base(path) != "math.GT_0309136.pdf" {
		t.Errorf("filename = %q, want separators replaced", filepath.Base(path))
	}
}

func TestFetch(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept") != "application/pdf" {
			t.Errorf("Accept = %q", r.Header.Get("Accept"))
		}
		fmt.Fprint(w, "pdf bytes")
	}))
	defer ts.Close()

	s := newTestStore(t)
	path, err := Fetch(context.Background(), ts.Client(), s, "7", ts.URL, "test-agent")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading fetched file: %v", err)
	}
	if string(data) != "pdf bytes" {
		t.Errorf("content = %q", data)
	}
}

func TestFetchHTTPError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer ts.Close()

	s := newTestStore(t)
	if _, err := Fetch(context.Background(), ts.Client(), s, "7", ts.URL, "test-agent"); err == nil {
		t.Error("expected error on HTTP 403")
	}
	if s.Exists("7") {
		t.Error("failed fetch left a stored blob")
	}
}
