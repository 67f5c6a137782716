package images

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func redSquare(t *testing.T, size int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.Set(x, y, color.RGBA{255, 0, 0, 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func dataURI(body []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(body)
}

type mapFetcher struct {
	files map[string][]byte
	calls int
}

func (f *mapFetcher) Fetch(uri string) ([]byte, string, error) {
	f.calls++
	body, ok := f.files[uri]
	if !ok {
		return nil, "", errors.New("not found")
	}
	return body, "image/png", nil
}

func TestIsDataURI(t *testing.T) {
	assert.True(t, IsDataURI("data:image/png;base64,abc"))
	assert.False(t, IsDataURI("/path/to/file.png"))
	assert.False(t, IsDataURI(""))
}

func TestLoadImageFromDataURI(t *testing.T) {
	img, err := LoadImageFromDataURI(dataURI(redSquare(t, 2)))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 2, 2), img.Bounds())

	for _, uri := range []string{
		"not-a-data-uri",
		"data:image/png;base64",
		"data:image/png;base64,!!!invalid-base64!!!",
		"data:image/png;base64,aGVsbG8=",
	} {
		_, err := LoadImageFromDataURI(uri)
		assert.Error(t, err, uri)
	}
}

func TestCacheLoadsOnce(t *testing.T) {
	f := &mapFetcher{files: map[string][]byte{"a.png": redSquare(t, 3)}}
	c := NewCache(f)

	w, h, err := c.Dimensions("a.png")
	require.NoError(t, err)
	assert.Equal(t, 3, w)
	assert.Equal(t, 3, h)

	_, err = c.Load("a.png")
	require.NoError(t, err)
	assert.Equal(t, 1, f.calls)

	_, err = c.Load("missing.png")
	assert.ErrorContains(t, err, "missing.png")
}

func TestCacheWithoutFetcher(t *testing.T) {
	c := NewCache(nil)
	_, err := c.Load(dataURI(redSquare(t, 1)))
	require.NoError(t, err)

	_, err = c.Load("a.png")
	assert.Error(t, err)
}
