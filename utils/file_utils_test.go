package utils

import (
	"bytes"
	"image"
	"image/png"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

var (
	pngMagic  = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}
	jpegMagic = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F'}
)

func TestSniffDocumentType(t *testing.T) {
	cases := []struct {
		name string
		data []byte
		want string
	}{
		{"png", pngMagic, "image/png"},
		{"jpeg", jpegMagic, "image/jpeg"},
		{"pdf", []byte("%PDF-1.7 trailer"), "application/pdf"},
		{"plain text", []byte("hello world"), "text/plain"},
	}

	for _, tc := range cases {
		if got := SniffDocumentType(tc.data); got != tc.want {
			t.Errorf("%s: got %q, want %q", tc.name, got, tc.want)
		}
	}
}

// buildUpload builds a real multipart.FileHeader the way Echo would hand it
// to a controller.
func buildUpload(t *testing.T, field, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile(field, filename)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatal(err)
	}
	writer.Close()

	req := httptest.NewRequest("POST", "/", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if err := req.ParseMultipartForm(32 << 20); err != nil {
		t.Fatal(err)
	}
	return req.MultipartForm.File[field][0]
}

func TestReadDocumentAcceptsAllowedTypes(t *testing.T) {
	pdf := append([]byte("%PDF-1.4\n"), bytes.Repeat([]byte{'x'}, 128)...)

	fh := buildUpload(t, "doc", "register.pdf", pdf)
	data, mime, err := ReadDocument(fh)
	if err != nil {
		t.Fatal(err)
	}
	if mime != "application/pdf" {
		t.Fatalf("mime = %q", mime)
	}
	if !bytes.Equal(data, pdf) {
		t.Fatal("content mangled")
	}
}

func TestReadDocumentRejectsDisallowedType(t *testing.T) {
	fh := buildUpload(t, "doc", "register.pdf", []byte("just text pretending to be a pdf by name"))
	if _, _, err := ReadDocument(fh); err == nil {
		t.Fatal("text content should be rejected regardless of filename")
	}
}

func TestReadDocumentRejectsOversize(t *testing.T) {
	big := append(append([]byte{}, pngMagic...), bytes.Repeat([]byte{0}, MaxDocumentSize)...)

	fh := buildUpload(t, "doc", "id.png", big)
	if _, _, err := ReadDocument(fh); err == nil {
		t.Fatal("oversized upload should be rejected")
	}
}

func TestMakeDocumentThumbnailSkipsPDF(t *testing.T) {
	url, err := MakeDocumentThumbnail([]byte("%PDF-1.4"), "application/pdf", "wholesale")
	if err != nil {
		t.Fatal(err)
	}
	if url != "" {
		t.Fatalf("pdf thumbnail url = %q, want empty", url)
	}
}

func TestMakeDocumentThumbnailRejectsGarbageImage(t *testing.T) {
	if _, err := MakeDocumentThumbnail([]byte("not an image"), "image/png", "wholesale"); err == nil {
		t.Fatal("expected a decode error")
	}
}

func TestDeleteStoredFileIgnoresForeignURLs(t *testing.T) {
	for _, url := range []string{"", "https://cdn.example.com/x.png", "/static/x.png"} {
		if err := DeleteStoredFile(url); err != nil {
			t.Errorf("DeleteStoredFile(%q) = %v", url, err)
		}
	}
}

func TestDeleteStoredFileRefusesTraversal(t *testing.T) {
	if err := DeleteStoredFile("/uploads/../../etc/passwd"); err == nil {
		t.Fatal("path traversal should be refused")
	}
}

func TestSaveDocumentRejectsUnknownMIME(t *testing.T) {
	if _, err := SaveDocument([]byte("x"), "image/gif", "wholesale"); err == nil {
		t.Fatal("unknown mime should be rejected")
	}
}

func encodePNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestMakeDocumentThumbnailFromPNG(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(wd)

	url, terr := MakeDocumentThumbnail(encodePNG(t), "image/png", "wholesale")
	if terr != nil {
		t.Fatal(terr)
	}
	if url == "" {
		t.Fatal("expected a thumbnail url")
	}
}

func TestDeleteStoredFilesRemovesDocumentsAndThumbnails(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(wd)

	png := encodePNG(t)
	docURL, err := SaveDocument(png, "image/png", "wholesale")
	if err != nil {
		t.Fatal(err)
	}
	thumbURL, err := MakeDocumentThumbnail(png, "image/png", "wholesale")
	if err != nil {
		t.Fatal(err)
	}

	// Blanks stand in for a missing PDF thumbnail and must not error out
	// the rest of the cleanup.
	DeleteStoredFiles(docURL, "", thumbURL, "")

	for _, url := range []string{docURL, thumbURL} {
		rel := strings.TrimPrefix(url, "/uploads/")
		if _, serr := os.Stat(filepath.Join("uploads", rel)); !os.IsNotExist(serr) {
			t.Errorf("file %s still exists after cleanup", url)
		}
	}
}
