package web

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/mogaika/landscape_browser/pack/cpo"
	"github.com/mogaika/landscape_browser/vfs"
)

func testDirectory(t *testing.T) *vfs.MemoryDirectory {
	c := &cpo.Cpo{Shapes: []cpo.Shape{&cpo.Mesh{
		Vertices: []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 0, 1}},
		Polygons: []cpo.Polygon{{0, 1, 2}},
		Matrix:   mgl32.Ident3(),
	}}}
	data, err := c.Marshal()
	if err != nil {
		t.Fatal(err)
	}

	d := vfs.NewMemoryDirectory("test")
	d.WriteFile("car.cpo", data)
	d.WriteFile("readme.txt", []byte("hello"))
	return d
}

func request(h http.Handler, method, url string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	if body == nil {
		body = &bytes.Buffer{}
	}
	r := httptest.NewRequest(method, url, body)
	if contentType != "" {
		r.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func uploadBody(t *testing.T, data []byte) (*bytes.Buffer, string) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("data", "upload")
	if err != nil {
		t.Fatal(err)
	}
	fw.Write(data)
	mw.Close()
	return &body, mw.FormDataContentType()
}

func TestListPack(t *testing.T) {
	h := NewRouter(testDirectory(t), "")
	w := request(h, "GET", "/json/pack", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d; expected 200", w.Code)
	}

	var files []fileInfo
	if err := json.Unmarshal(w.Body.Bytes(), &files); err != nil {
		t.Fatal(err)
	}
	expected := []fileInfo{{"car.cpo", true}, {"readme.txt", false}}
	if len(files) != len(expected) || files[0] != expected[0] || files[1] != expected[1] {
		t.Errorf("files=%v; expected %v", files, expected)
	}
}

func TestPackFileJson(t *testing.T) {
	h := NewRouter(testDirectory(t), "")
	if w := request(h, "GET", "/json/pack/car.cpo", nil, ""); w.Code != http.StatusOK {
		t.Errorf("status=%d; expected 200: %s", w.Code, w.Body.String())
	}
	if w := request(h, "GET", "/json/pack/missing.cpo", nil, ""); w.Code != http.StatusInternalServerError {
		t.Errorf("missing file status=%d; expected 500", w.Code)
	}
}

func TestActionPackFile(t *testing.T) {
	h := NewRouter(testDirectory(t), "")

	w := request(h, "GET", "/action/layout/car.cpo", nil, "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "header") {
		t.Errorf("layout status=%d body=%q", w.Code, w.Body.String())
	}

	w = request(h, "GET", "/action/gltf/car.cpo", nil, "")
	if w.Code != http.StatusOK || !bytes.HasPrefix(w.Body.Bytes(), []byte("glTF")) {
		t.Errorf("gltf status=%d; expected binary gltf", w.Code)
	}

	if w := request(h, "GET", "/action/nothing/car.cpo", nil, ""); w.Code != http.StatusNotFound {
		t.Errorf("unknown action status=%d; expected 404", w.Code)
	}
}

func TestUploadPackFile(t *testing.T) {
	d := testDirectory(t)
	h := NewRouter(d, "")

	body, ct := uploadBody(t, []byte("broken"))
	if w := request(h, "POST", "/upload/pack/car.cpo", body, ct); w.Code != http.StatusInternalServerError {
		t.Errorf("broken upload status=%d; expected 500", w.Code)
	}
	if data, _ := d.ReadFile("car.cpo"); bytes.Equal(data, []byte("broken")) {
		t.Errorf("broken upload replaced the file")
	}

	body, ct = uploadBody(t, []byte("new text"))
	if w := request(h, "POST", "/upload/pack/readme.txt", body, ct); w.Code != http.StatusOK {
		t.Errorf("upload status=%d; expected 200: %s", w.Code, w.Body.String())
	}
	if data, _ := d.ReadFile("readme.txt"); string(data) != "new text" {
		t.Errorf("readme.txt=%q; expected uploaded data", data)
	}
}
