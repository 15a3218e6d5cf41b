package media

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/tmc/langchaingo/llms"
)

var mimeTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".bmp":  "image/bmp",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// MIMEType returns the image MIME type for the file name's extension, or
// application/octet-stream if it isn't known.
func MIMEType(name string) string {
	if mt, ok := mimeTypes[strings.ToLower(filepath.Ext(name))]; ok {
		return mt
	}
	return "application/octet-stream"
}

func DataURI(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

var ErrInvalidDataURI = errors.New("media: invalid data URI")

// ParseDataURI decodes a base64 data URI, e.g. data:image/png;base64,iVBOR...
func ParseDataURI(uri string) (mimeType string, data []byte, err error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return "", nil, ErrInvalidDataURI
	}
	header, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, ErrInvalidDataURI
	}
	mimeType, ok = strings.CutSuffix(header, ";base64")
	if !ok {
		return "", nil, fmt.Errorf("%w: only base64 encoding is supported", ErrInvalidDataURI)
	}
	if mimeType == "" {
		mimeType = "text/plain"
	}
	data, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrInvalidDataURI, err)
	}
	return mimeType, data, nil
}

func FileDataURI(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("media: failed to read %q: %w", path, err)
	}
	return DataURI(MIMEType(path), data), nil
}

// ReadFile loads an image from disk as a binary content part.
func ReadFile(path string) (llms.BinaryContent, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return llms.BinaryContent{}, fmt.Errorf("media: failed to read %q: %w", path, err)
	}
	return llms.BinaryContent{MIMEType: MIMEType(path), Data: data}, nil
}

func NewResolver(client *resty.Client) Resolver {
	return Resolver{client: client}
}

// Resolver turns image URLs from chat requests into bytes that can be
// passed to a model backend.
type Resolver struct {
	client *resty.Client
}

func (r Resolver) Resolve(ctx context.Context, url string) (llms.BinaryContent, error) {
	if strings.HasPrefix(url, "data:") {
		mimeType, data, err := ParseDataURI(url)
		if err != nil {
			return llms.BinaryContent{}, err
		}
		return llms.BinaryContent{MIMEType: mimeType, Data: data}, nil
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return llms.BinaryContent{}, fmt.Errorf("media: unsupported URL scheme in %q", url)
	}
	resp, err := r.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return llms.BinaryContent{}, fmt.Errorf("media: failed to download %q: %w", url, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return llms.BinaryContent{}, fmt.Errorf("media: failed to download %q: unexpected status %d", url, resp.StatusCode())
	}
	mimeType := resp.Header().Get("Content-Type")
	if mimeType == "" || strings.HasPrefix(mimeType, "application/octet-stream") {
		mimeType = MIMEType(url)
	}
	return llms.BinaryContent{MIMEType: mimeType, Data: resp.Body()}, nil
}
