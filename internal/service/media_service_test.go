package service

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"strings"
	"testing"

	config "github.com/cortexcart/cortexcart-api/configs"
	"github.com/cortexcart/cortexcart-api/internal/models"
)

type stubAssetRepo struct {
	created []*models.MediaAsset
}

func (r *stubAssetRepo) Create(ctx context.Context, asset *models.MediaAsset) (int64, error) {
	r.created = append(r.created, asset)
	return int64(len(r.created)), nil
}

func (r *stubAssetRepo) GetByID(ctx context.Context, id int64) (*models.MediaAsset, error) {
	return nil, nil
}

func (r *stubAssetRepo) ListByUser(ctx context.Context, userEmail string) ([]*models.MediaAsset, error) {
	return r.created, nil
}

func fileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", name)
	if err != nil {
		t.Fatalf("creating form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("writing form file: %v", err)
	}
	writer.Close()

	req, err := http.NewRequest("POST", "/", &buf)
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	if err := req.ParseMultipartForm(1 << 20); err != nil {
		t.Fatalf("parsing multipart form: %v", err)
	}
	return req.MultipartForm.File["file"][0]
}

func TestUploadRejectsUnknownFileType(t *testing.T) {
	s := NewMediaService(config.Config{}, &stubAssetRepo{})

	_, err := s.Upload(context.Background(), "merchant@example.com", fileHeader(t, "notes.txt", []byte("just some text")))
	if err == nil {
		t.Fatal("expected error for unsniffable content")
	}
}

func TestUploadRejectsDisallowedFileType(t *testing.T) {
	s := NewMediaService(config.Config{}, &stubAssetRepo{})

	// Valid GIF magic bytes; gif is sniffable but not on the allowlist.
	gif := []byte("GIF89a\x01\x00\x01\x00\x80\x00\x00")

	_, err := s.Upload(context.Background(), "merchant@example.com", fileHeader(t, "anim.gif", gif))
	if err == nil {
		t.Fatal("expected error for disallowed file type")
	}
	if !strings.Contains(err.Error(), "not allowed") {
		t.Errorf("error = %v", err)
	}
}
