package services

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSanitizePDF(t *testing.T) {
	t.Run("trailing garbage removed", func(t *testing.T) {
		content := append([]byte("%PDF-1.4\nsome objects\n%%EOF\n"),
			[]byte("<html>proxy error page appended by a portal</html>")...)

		cleaned := sanitizePDF(content)
		if !bytes.HasSuffix(cleaned, []byte("%%EOF\n")) {
			t.Errorf("garbage not removed, tail: %q", cleaned[len(cleaned)-20:])
		}
	})

	t.Run("clean pdf untouched", func(t *testing.T) {
		content := []byte("%PDF-1.4\nsome objects\n%%EOF\n")
		cleaned := sanitizePDF(content)
		if !bytes.Equal(cleaned, content) {
			t.Error("clean PDF was modified")
		}
	})

	t.Run("non-pdf untouched", func(t *testing.T) {
		content := []byte("this is not a pdf at all %%EOF junk")
		cleaned := sanitizePDF(content)
		if !bytes.Equal(cleaned, content) {
			t.Error("non-PDF content was modified")
		}
	})

	t.Run("no eof marker untouched", func(t *testing.T) {
		content := []byte("%PDF-1.4\ntruncated upload")
		cleaned := sanitizePDF(content)
		if !bytes.Equal(cleaned, content) {
			t.Error("truncated PDF was modified")
		}
	})
}

func TestSplitOCRPages(t *testing.T) {
	pages := splitOCRPages("page one text\fpage two text\fpage three")
	if len(pages) != 3 {
		t.Fatalf("expected 3 pages, got %d", len(pages))
	}
	if pages[1] != "page two text" {
		t.Errorf("unexpected page content: %q", pages[1])
	}

	single := splitOCRPages("no form feeds here")
	if len(single) != 1 {
		t.Errorf("expected single page, got %d", len(single))
	}
}

func TestExtractDocumentEmptyContent(t *testing.T) {
	extractor := NewPDFExtractor(nil)

	_, err := extractor.ExtractDocument(context.Background(), nil, "empty.pdf")
	if !errors.Is(err, ErrExtractionFailed) {
		t.Errorf("expected ErrExtractionFailed, got %v", err)
	}
}

func TestExtractDocumentNoOCRConfigured(t *testing.T) {
	extractor := NewPDFExtractor(nil)

	// not a parseable PDF, and no OCR client to fall back to
	_, err := extractor.ExtractDocument(context.Background(), []byte("garbage bytes"), "bad.pdf")
	if !errors.Is(err, ErrExtractionFailed) {
		t.Errorf("expected ErrExtractionFailed, got %v", err)
	}
}

func TestOCRClientProcessPDFFile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ocr/file" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			t.Errorf("failed to parse multipart form: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"text":"recognized text\fsecond page","page_count":2}`))
	}))
	defer server.Close()

	client := &OCRClient{BaseURL: server.URL, HTTPClient: server.Client()}

	resp, err := client.ProcessPDFFile(context.Background(), []byte("%PDF-1.4 fake"), "scan.pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.PageCount != 2 {
		t.Errorf("expected 2 pages, got %d", resp.PageCount)
	}
	if resp.Text == "" {
		t.Error("expected recognized text")
	}
}

func TestOCRClientErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "ocr engine crashed", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := &OCRClient{BaseURL: server.URL, HTTPClient: server.Client()}

	_, err := client.ProcessPDFFile(context.Background(), []byte("x"), "scan.pdf")
	if err == nil {
		t.Fatal("expected error for 500 response")
	}
}

func TestOCRClientHealthCheck(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := &OCRClient{BaseURL: server.URL, HTTPClient: server.Client()}
	if err := client.HealthCheck(context.Background()); err != nil {
		t.Errorf("expected healthy, got %v", err)
	}
}
