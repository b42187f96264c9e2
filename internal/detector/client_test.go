package detector

import (
	"bytes"
	"context"
	"image"
	"image/jpeg"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDetectFaces(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embed/face" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(10 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		defer file.Close()
		if header.Header.Get("Content-Type") != "image/jpeg" {
			t.Errorf("expected image/jpeg part, got %s", header.Header.Get("Content-Type"))
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"faces_count": 1,
			"faces": [{
				"face_index": 0,
				"dim": 4,
				"embedding": [0.1, 0.2, 0.3, 0.4],
				"bbox": [10, 20, 110, 140],
				"det_score": 0.98
			}],
			"model": "buffalo_l"
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	resp, err := client.DetectFaces(context.Background(), []byte{0xFF, 0xD8, 0xFF, 0xE0, 0, 0, 0, 0})
	if err != nil {
		t.Fatalf("detect faces: %v", err)
	}

	if resp.FacesCount != 1 || len(resp.Faces) != 1 {
		t.Fatalf("expected 1 face, got %+v", resp)
	}
	face := resp.Faces[0]
	if face.DetScore != 0.98 {
		t.Errorf("expected det score 0.98, got %f", face.DetScore)
	}
	if len(face.Embedding) != 4 {
		t.Errorf("expected 4-dim embedding, got %d", len(face.Embedding))
	}
	if len(face.BBox) != 4 || face.BBox[0] != 10 {
		t.Errorf("unexpected bbox %v", face.BBox)
	}
}

func TestDetectFaces_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.DetectFaces(context.Background(), []byte{0xFF, 0xD8, 0xFF, 0xE0, 0, 0, 0, 0})
	if err == nil {
		t.Fatal("expected error on server failure")
	}
}

func TestDetectMIMEType(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected string
	}{
		{"jpeg", []byte{0xFF, 0xD8, 0xFF, 0xE0, 0, 0, 0, 0}, "image/jpeg"},
		{"png", []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, "image/png"},
		{"gif", []byte{0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0, 0}, "image/gif"},
		{"too short", []byte{0xFF}, "application/octet-stream"},
		{"unknown", []byte{1, 2, 3, 4, 5, 6, 7, 8}, "application/octet-stream"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := detectMIMEType(tt.data); got != tt.expected {
				t.Errorf("detectMIMEType = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestResizeImage(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 400, 200))
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, src, nil); err != nil {
		t.Fatalf("encode source: %v", err)
	}

	out, err := ResizeImage(buf.Bytes(), 100)
	if err != nil {
		t.Fatalf("resize: %v", err)
	}

	img, _, err := image.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("decode resized: %v", err)
	}
	b := img.Bounds()
	if b.Dx() != 100 || b.Dy() != 50 {
		t.Errorf("expected 100x50, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestResizeImage_SmallImagePassesThrough(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 50, 40))
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, src, nil); err != nil {
		t.Fatalf("encode source: %v", err)
	}

	out, err := ResizeImage(buf.Bytes(), 100)
	if err != nil {
		t.Fatalf("resize: %v", err)
	}

	img, _, err := image.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	b := img.Bounds()
	if b.Dx() != 50 || b.Dy() != 40 {
		t.Errorf("expected unchanged 50x40, got %dx%d", b.Dx(), b.Dy())
	}
}
