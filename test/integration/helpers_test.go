package integration

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/png"
	"io/fs"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"shop-inventory/internal/model"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/oned"
	zxingqr "github.com/makiuchi-d/gozxing/qrcode"
	"github.com/stretchr/testify/require"
)

type upload struct {
	field    string
	filename string
	data     []byte
}

func do(t *testing.T, h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func createRequest(t *testing.T, fields map[string]string, files []upload) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for _, f := range files {
		fw, err := mw.CreateFormFile(f.field, f.filename)
		require.NoError(t, err)
		_, err = fw.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/products", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func createProduct(t *testing.T, h http.Handler, fields map[string]string, files []upload) model.ProductResponse {
	t.Helper()

	w := do(t, h, createRequest(t, fields, files))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp model.ProductResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func scanRequest(t *testing.T, body string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/scan", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func loginRequest(username, password string) *http.Request {
	form := url.Values{"username": {username}, "password": {password}}
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

// localPath maps an absolute media URL back onto the media root.
func localPath(t *testing.T, root, absURL string) string {
	t.Helper()
	rel := strings.TrimPrefix(absURL, testBaseURL)
	require.NotEqual(t, absURL, rel, "url %q is not under the public base url", absURL)
	return filepath.Join(root, filepath.FromSlash(strings.TrimPrefix(rel, "/")))
}

// listFiles returns every regular file below root, relative and sorted.
func listFiles(t *testing.T, root string) []string {
	t.Helper()
	var files []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			rel, _ := filepath.Rel(root, p)
			files = append(files, filepath.ToSlash(rel))
		}
		return nil
	})
	require.NoError(t, err)
	sort.Strings(files)
	return files
}

func decodeImage(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	return img
}

func decodeCode(t *testing.T, reader gozxing.Reader, data []byte) string {
	t.Helper()
	bmp, err := gozxing.NewBinaryBitmapFromImage(decodeImage(t, data))
	require.NoError(t, err)
	result, err := reader.Decode(bmp, map[gozxing.DecodeHintType]interface{}{
		gozxing.DecodeHintType_TRY_HARDER: true,
	})
	require.NoError(t, err)
	return result.GetText()
}

func decodeBarcodeFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return decodeCode(t, oned.NewCode128Reader(), data)
}

func decodeQRFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return decodeCode(t, zxingqr.NewQRCodeReader(), data)
}

func decodeDataURI(t *testing.T, uri string) []byte {
	t.Helper()
	const prefix = "data:image/png;base64,"
	require.True(t, strings.HasPrefix(uri, prefix))
	data, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(uri, prefix))
	require.NoError(t, err)
	return data
}
