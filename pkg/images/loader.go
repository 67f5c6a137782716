package images

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/url"
	"strings"
	"sync"

	"lineclamp/pkg/source"
)

// Cache decodes the images a document refers to and keeps them by URI.
type Cache struct {
	fetcher source.Fetcher

	mu     sync.RWMutex
	images map[string]image.Image
}

// NewCache creates a Cache that loads images through fetcher. A nil
// fetcher only serves data: URIs.
func NewCache(fetcher source.Fetcher) *Cache {
	return &Cache{fetcher: fetcher, images: make(map[string]image.Image)}
}

// Load returns the decoded image for src.
func (c *Cache) Load(src string) (image.Image, error) {
	c.mu.RLock()
	img, ok := c.images[src]
	c.mu.RUnlock()
	if ok {
		return img, nil
	}

	var err error
	switch {
	case IsDataURI(src):
		img, err = LoadImageFromDataURI(src)
	case c.fetcher == nil:
		err = fmt.Errorf("no fetcher for %s", src)
	default:
		var body []byte
		body, _, err = c.fetcher.Fetch(src)
		if err == nil {
			img, _, err = image.Decode(bytes.NewReader(body))
		}
	}
	if err != nil {
		return nil, fmt.Errorf("loading image %s: %w", src, err)
	}

	c.mu.Lock()
	c.images[src] = img
	c.mu.Unlock()
	return img, nil
}

// Dimensions returns the intrinsic size of the image at src.
func (c *Cache) Dimensions(src string) (width, height int, err error) {
	img, err := c.Load(src)
	if err != nil {
		return 0, 0, err
	}
	b := img.Bounds()
	return b.Dx(), b.Dy(), nil
}

func IsDataURI(s string) bool {
	return strings.HasPrefix(s, "data:")
}

// LoadImageFromDataURI decodes an image embedded as a data: URI, base64 or
// percent encoded.
func LoadImageFromDataURI(uri string) (image.Image, error) {
	if !IsDataURI(uri) {
		return nil, fmt.Errorf("not a data URI")
	}
	meta, payload, ok := strings.Cut(strings.TrimPrefix(uri, "data:"), ",")
	if !ok {
		return nil, fmt.Errorf("data URI has no payload")
	}

	var data []byte
	if strings.HasSuffix(meta, ";base64") {
		decoded, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("decoding base64: %w", err)
		}
		data = decoded
	} else {
		unescaped, err := url.PathUnescape(payload)
		if err != nil {
			return nil, fmt.Errorf("decoding data URI: %w", err)
		}
		data = []byte(unescaped)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	return img, nil
}
