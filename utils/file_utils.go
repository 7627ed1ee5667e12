// utils/file_utils.go
package utils

import (
	"bytes"
	"fmt"
	"image/jpeg"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

const (
	// Base directory for storing uploaded files
	uploadBaseDir = "uploads"
	// Base URL for serving files
	baseURL = "/uploads"
	// Wholesale verification documents are capped at 2 MiB each
	MaxDocumentSize = 2 * 1024 * 1024
)

// MIME types accepted for wholesale verification documents
var allowedDocumentMIME = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"application/pdf": ".pdf",
}

// ReadDocument reads an uploaded document into memory, enforcing the size
// cap and the allowed MIME types. The type is sniffed from content, never
// trusted from the filename or the Content-Type part header.
func ReadDocument(fh *multipart.FileHeader) ([]byte, string, error) {
	if fh.Size > MaxDocumentSize {
		return nil, "", fmt.Errorf("file %s exceeds the 2 MB limit", fh.Filename)
	}

	src, err := fh.Open()
	if err != nil {
		return nil, "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, MaxDocumentSize+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read uploaded file: %w", err)
	}
	if len(data) > MaxDocumentSize {
		return nil, "", fmt.Errorf("file %s exceeds the 2 MB limit", fh.Filename)
	}

	mimeType := SniffDocumentType(data)
	if _, ok := allowedDocumentMIME[mimeType]; !ok {
		return nil, "", fmt.Errorf("unsupported document type %q: allowed types are JPEG, PNG and PDF", mimeType)
	}

	return data, mimeType, nil
}

// SniffDocumentType detects the MIME type from file content.
func SniffDocumentType(data []byte) string {
	detected := http.DetectContentType(data)
	// DetectContentType returns "application/pdf" via the %PDF magic only
	// on some Go versions; check the magic directly.
	if strings.HasPrefix(detected, "text/plain") && bytes.HasPrefix(data, []byte("%PDF-")) {
		return "application/pdf"
	}
	// Strip charset parameters
	if idx := strings.Index(detected, ";"); idx > 0 {
		detected = detected[:idx]
	}
	return detected
}

// SaveDocument writes a validated document under uploads/<subDir> with a
// random name and returns the serving URL.
func SaveDocument(data []byte, mimeType, subDir string) (string, error) {
	ext, ok := allowedDocumentMIME[mimeType]
	if !ok {
		return "", fmt.Errorf("unsupported document type %q", mimeType)
	}

	filename := uuid.NewString() + ext
	fullPath := filepath.Join(uploadBaseDir, subDir, filename)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %w", filepath.Dir(fullPath), err)
	}

	if err := os.WriteFile(fullPath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write file %s: %w", fullPath, err)
	}

	return fmt.Sprintf("%s/%s/%s", baseURL, subDir, filename), nil
}

// MakeDocumentThumbnail renders a small JPEG preview of an image document
// for the admin review queue. PDF documents have no thumbnail.
func MakeDocumentThumbnail(data []byte, mimeType, subDir string) (string, error) {
	if mimeType != "image/jpeg" && mimeType != "image/png" {
		return "", nil
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}

	// Max width 320px, aspect ratio preserved
	resized := imaging.Resize(img, 320, 0, imaging.Lanczos)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: 85}); err != nil {
		return "", fmt.Errorf("failed to encode thumbnail: %w", err)
	}

	filename := uuid.NewString() + ".jpg"
	fullPath := filepath.Join(uploadBaseDir, subDir, "thumbnails", filename)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create thumbnail directory: %w", err)
	}

	if err := os.WriteFile(fullPath, buf.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("failed to save thumbnail: %w", err)
	}

	return fmt.Sprintf("%s/%s/thumbnails/%s", baseURL, subDir, filename), nil
}

// DeleteStoredFile removes a previously saved upload given its serving URL.
// Missing files are not an error; the reference may already be stale.
func DeleteStoredFile(url string) error {
	if url == "" || !strings.HasPrefix(url, baseURL+"/") {
		return nil
	}

	rel := strings.TrimPrefix(url, baseURL+"/")
	fullPath := filepath.Join(uploadBaseDir, filepath.Clean(rel))

	// Refuse to escape the uploads directory
	if !strings.HasPrefix(fullPath, uploadBaseDir+string(os.PathSeparator)) {
		return fmt.Errorf("invalid upload path %q", url)
	}

	err := os.Remove(fullPath)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// DeleteStoredFiles removes every stored file in the list, skipping blanks.
// Used to roll back a multi-document upload as one unit.
func DeleteStoredFiles(urls ...string) {
	for _, url := range urls {
		if url != "" {
			_ = DeleteStoredFile(url)
		}
	}
}
