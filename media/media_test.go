package media

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/google/go-cmp/cmp"
	"github.com/tmc/langchaingo/llms"
)

func TestMIMEType(t *testing.T) {
	tests := []struct {
		name     string
		expected string
	}{
		{name: "a.jpg", expected: "image/jpeg"},
		{name: "a.JPEG", expected: "image/jpeg"},
		{name: "a.png", expected: "image/png"},
		{name: "a.gif", expected: "image/gif"},
		{name: "a.bmp", expected: "image/bmp"},
		{name: "a", expected: "application/octet-stream"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if actual := MIMEType(tt.name); actual != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, actual)
			}
		})
	}
}

func TestDataURI(t *testing.T) {
	uri := DataURI("image/png", []byte("png bytes"))
	if uri != "data:image/png;base64,cG5nIGJ5dGVz" {
		t.Errorf("unexpected data URI: %q", uri)
	}
	mimeType, data, err := ParseDataURI(uri)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mimeType != "image/png" {
		t.Errorf("expected image/png, got %q", mimeType)
	}
	if string(data) != "png bytes" {
		t.Errorf("unexpected data: %q", data)
	}
}

func TestParseDataURIErrors(t *testing.T) {
	tests := []struct {
		name string
		uri  string
	}{
		{name: "missing scheme", uri: "image/png;base64,AAAA"},
		{name: "missing comma", uri: "data:image/png;base64"},
		{name: "not base64", uri: "data:image/png,raw"},
		{name: "bad payload", uri: "data:image/png;base64,!!!"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ParseDataURI(tt.uri)
			if !errors.Is(err, ErrInvalidDataURI) {
				t.Errorf("expected ErrInvalidDataURI, got %v", err)
			}
		})
	}
}

func TestFileDataURI(t *testing.T) {
	name := filepath.Join(t.TempDir(), "a.gif")
	if err := os.WriteFile(name, []byte("GIF89a"), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	uri, err := FileDataURI(name)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if uri != "data:image/gif;base64,R0lGODlh" {
		t.Errorf("unexpected data URI: %q", uri)
	}

	bc, err := ReadFile(name)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(llms.BinaryContent{MIMEType: "image/gif", Data: []byte("GIF89a")}, bc); diff != "" {
		t.Errorf("unexpected content: %v", diff)
	}
}

func TestResolver(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/cat.jpg":
			w.Header().Set("Content-Type", "image/jpeg")
			_, _ = w.Write([]byte("jpeg bytes"))
		case "/untyped.png":
			w.Header().Set("Content-Type", "application/octet-stream")
			_, _ = w.Write([]byte("png bytes"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer s.Close()

	r := NewResolver(resty.New())
	ctx := context.Background()

	tests := []struct {
		name     string
		url      string
		expected llms.BinaryContent
		err      bool
	}{
		{
			name:     "data URIs are decoded without a request",
			url:      DataURI("image/png", []byte("inline")),
			expected: llms.BinaryContent{MIMEType: "image/png", Data: []byte("inline")},
		},
		{
			name:     "http URLs are downloaded",
			url:      s.URL + "/cat.jpg",
			expected: llms.BinaryContent{MIMEType: "image/jpeg", Data: []byte("jpeg bytes")},
		},
		{
			name:     "the extension is used when the server does not give a type",
			url:      s.URL + "/untyped.png",
			expected: llms.BinaryContent{MIMEType: "image/png", Data: []byte("png bytes")},
		},
		{
			name: "non-200 responses are errors",
			url:  s.URL + "/missing.jpg",
			err:  true,
		},
		{
			name: "unsupported schemes are errors",
			url:  "ftp://example.com/a.jpg",
			err:  true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actual, err := r.Resolve(ctx, tt.url)
			if tt.err {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.expected, actual); diff != "" {
				t.Errorf("unexpected content: %v", diff)
			}
		})
	}
}
