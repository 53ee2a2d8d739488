package media

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// uploadHeader builds a real multipart.FileHeader the way a request would.
func uploadHeader(t *testing.T, name, content string) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["file"][0]
}

func TestLocalStorage_Save(t *testing.T) {
	root := t.TempDir()
	s := NewLocalStorage(root, "/media")

	rel, err := s.Save(context.Background(), "projects/featured/", uploadHeader(t, "Shot.PNG", "png-bytes"))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(rel, "projects/featured/"))
	assert.True(t, strings.HasSuffix(rel, ".png"))

	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))

	assert.Equal(t, "/media/"+rel, s.URL(rel))
}

func TestResolveURL(t *testing.T) {
	assert.Equal(t, "", resolveURL("/media/", ""))
	assert.Equal(t, "/media/news/a.jpg", resolveURL("/media/", "/news/a.jpg"))
	assert.Equal(t, "https://res.cloudinary.com/x/a.jpg", resolveURL("/media/", "https://res.cloudinary.com/x/a.jpg"))
}

type failingReader struct{ n int }

func (r *failingReader) Read(p []byte) (int, error) {
	if r.n == 0 {
		return 0, errors.New("connection reset")
	}
	n := copy(p, bytes.Repeat([]byte("x"), r.n))
	r.n -= n
	return n, nil
}

func TestWriteFile_FailureLeavesNothing(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "upload.png")

	err := writeFile(dst, &failingReader{n: 4})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "write media file")

	_, statErr := os.Stat(dst)
	assert.True(t, errors.Is(statErr, os.ErrNotExist))
}

func TestWriteFile(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "upload.png")

	require.NoError(t, writeFile(dst, io.LimitReader(bytes.NewReader([]byte("png-bytes")), 3)))

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "png", string(data))
}
