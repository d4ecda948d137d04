package filestorage

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fileHeader(t *testing.T, name, content string) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["file"][0]
}

func TestSaveAndDelete(t *testing.T) {
	base := t.TempDir()
	ls, err := NewLocalStorage(base)
	require.NoError(t, err)

	stored, err := ls.Save(fileHeader(t, "Catalog.CSV", "program,course_code,course_name\n"), "imports")
	require.NoError(t, err)
	assert.Equal(t, "Catalog.CSV", stored.OriginalName)
	assert.Equal(t, ".csv", filepath.Ext(stored.Name))
	assert.EqualValues(t, 32, stored.Size)
	assert.Equal(t, filepath.Join(base, "imports", stored.Name), stored.Path)

	content, err := os.ReadFile(stored.Path)
	require.NoError(t, err)
	assert.Equal(t, "program,course_code,course_name\n", string(content))

	require.NoError(t, ls.Delete(stored))
	_, err = os.Stat(stored.Path)
	assert.True(t, os.IsNotExist(err))

	// Deleting twice is fine.
	assert.NoError(t, ls.Delete(stored))
}

func TestSave_RejectsEscapingPaths(t *testing.T) {
	ls, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = ls.Save(fileHeader(t, "x.csv", "a"), "../outside")
	assert.Error(t, err)

	_, err = ls.Save(nil, "imports")
	assert.Error(t, err)

	assert.Error(t, ls.Delete(&StoredFile{Path: "/etc/passwd"}))
}
