package services

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ExtractionMethod tags how a document's text was recovered
type ExtractionMethod string

const (
	ExtractionDirect        ExtractionMethod = "direct"
	ExtractionOptical       ExtractionMethod = "optical"
	ExtractionFontRecovered ExtractionMethod = "font-recovered"
)

// ExtractedDocument is the recovered text of one PDF with page boundaries
// preserved. Ephemeral; discarded once parsing is done.
type ExtractedDocument struct {
	Text      string
	Pages     []string
	PageCount int
	Method    ExtractionMethod
}

// PDFExtractor handles PDF text extraction using ledongthuc/pdf, with an
// OCR fallback for scanned documents and legacy Hindi font recovery.
type PDFExtractor struct {
	ocr *OCRClient
}

// NewPDFExtractor creates a new PDF extractor
func NewPDFExtractor(ocr *OCRClient) *PDFExtractor {
	return &PDFExtractor{ocr: ocr}
}

// sanitizePDF fixes common PDF issues like trailing garbage data.
// Many PDFs downloaded from web have HTML or other data appended after %%EOF;
// truncate the content at the last valid %%EOF marker.
func sanitizePDF(content []byte) []byte {
	if len(content) == 0 {
		return content
	}

	if !bytes.HasPrefix(content, []byte("%PDF-")) {
		return content // Not a PDF, return as-is
	}

	eofMarker := []byte("%%EOF")
	lastEOF := bytes.LastIndex(content, eofMarker)
	if lastEOF == -1 {
		// No %%EOF found - PDF is likely truncated, let the parser decide
		return content
	}

	pdfEnd := lastEOF + len(eofMarker)

	// Allow for trailing newlines after %%EOF (valid per PDF spec)
	for pdfEnd < len(content) && (content[pdfEnd] == '\n' || content[pdfEnd] == '\r') {
		pdfEnd++
	}

	if pdfEnd < len(content) {
		extraBytes := len(content) - pdfEnd
		if extraBytes > 10 { // More than just whitespace
			log.Printf("PDF Extractor: Removing %d bytes of trailing garbage after %%EOF", extraBytes)
			return content[:pdfEnd]
		}
	}

	return content
}

// ExtractDocument runs the full recovery pipeline: direct text extraction,
// OCR fallback for image-only documents, then speculative legacy-font
// conversion. Pure transform of bytes to text; no persistence.
func (p *PDFExtractor) ExtractDocument(ctx context.Context, content []byte, filename string) (*ExtractedDocument, error) {
	if len(content) == 0 {
		return nil, fmt.Errorf("empty PDF content: %w", ErrExtractionFailed)
	}

	doc, err := p.extractDirect(content)
	if err != nil {
		log.Printf("PDF Extractor: Direct extraction failed for %s, falling back to OCR: %v", filename, err)
		doc, err = p.extractOptical(ctx, content, filename)
		if err != nil {
			return nil, err
		}
	}

	// Speculative legacy-font recovery. Kept only when it strictly
	// increases the Devanagari character count, discarded otherwise.
	if recovered, font := RecoverLegacyHindi(doc.Text); font != "" {
		doc.Text = recovered
		for i, page := range doc.Pages {
			if pageRecovered, pageFont := RecoverLegacyHindi(page); pageFont != "" {
				doc.Pages[i] = pageRecovered
			}
		}
		doc.Method = ExtractionFontRecovered
	}

	return doc, nil
}

// extractDirect extracts embedded text from PDF bytes, page by page
func (p *PDFExtractor) extractDirect(content []byte) (*ExtractedDocument, error) {
	content = sanitizePDF(content)

	reader := bytes.NewReader(content)
	pdfReader, err := pdf.NewReader(reader, int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse PDF: %w", err)
	}

	numPages := pdfReader.NumPage()
	if numPages == 0 {
		return nil, fmt.Errorf("PDF has no pages")
	}

	log.Printf("PDF Extractor: Processing PDF with %d pages", numPages)

	pages := make([]string, 0, numPages)
	var textBuilder strings.Builder

	for i := 1; i <= numPages; i++ {
		page := pdfReader.Page(i)
		if page.V.IsNull() {
			log.Printf("PDF Extractor: Page %d is null, skipping", i)
			pages = append(pages, "")
			continue
		}

		pageText := extractPageText(page, i)
		pages = append(pages, pageText)
		textBuilder.WriteString(pageText)
		textBuilder.WriteString("\n")
	}

	extracted := strings.TrimSpace(textBuilder.String())

	// Scanned/image-only PDFs parse fine but yield nothing useful
	if len(extracted) < 50 {
		return nil, fmt.Errorf("insufficient text extracted (only %d characters) - PDF may be scanned and require OCR", len(extracted))
	}

	log.Printf("PDF Extractor: Successfully extracted %d characters from %d pages", len(extracted), numPages)

	return &ExtractedDocument{
		Text:      extracted,
		Pages:     pages,
		PageCount: numPages,
		Method:    ExtractionDirect,
	}, nil
}

// extractPageText pulls text from one page, preferring row extraction for
// structure preservation with plain text as fallback
func extractPageText(page pdf.Page, pageNum int) string {
	rows, err := page.GetTextByRow()
	if err != nil {
		log.Printf("PDF Extractor: Row extraction failed for page %d, trying plain text: %v", pageNum, err)
		text, plainErr := page.GetPlainText(nil)
		if plainErr != nil {
			log.Printf("PDF Extractor: Plain text extraction also failed for page %d: %v", pageNum, plainErr)
			return ""
		}
		return strings.TrimSpace(text)
	}

	var pageBuilder strings.Builder
	for _, row := range rows {
		var rowText strings.Builder
		for _, word := range row.Content {
			rowText.WriteString(word.S)
		}
		line := strings.TrimSpace(rowText.String())
		if line != "" {
			pageBuilder.WriteString(line)
			pageBuilder.WriteString("\n")
		}
	}
	return strings.TrimSpace(pageBuilder.String())
}

// extractOptical sends the document to the OCR service and adapts its
// response. Only invoked on the fallback path; OCR is slow.
func (p *PDFExtractor) extractOptical(ctx context.Context, content []byte, filename string) (*ExtractedDocument, error) {
	if p.ocr == nil {
		return nil, fmt.Errorf("OCR client not configured: %w", ErrExtractionFailed)
	}

	ocrResp, err := p.ocr.ProcessPDFFile(ctx, content, filename)
	if err != nil {
		return nil, fmt.Errorf("OCR fallback failed: %v: %w", err, ErrExtractionFailed)
	}
	if strings.TrimSpace(ocrResp.Text) == "" {
		return nil, fmt.Errorf("OCR returned no text: %w", ErrExtractionFailed)
	}

	log.Printf("PDF Extractor: OCR recovered %d characters from %d pages", len(ocrResp.Text), ocrResp.PageCount)

	return &ExtractedDocument{
		Text:      ocrResp.Text,
		Pages:     splitOCRPages(ocrResp.Text),
		PageCount: ocrResp.PageCount,
		Method:    ExtractionOptical,
	}, nil
}

// splitOCRPages recovers page boundaries from OCR output. The OCR service
// separates pages with form feeds; when it doesn't, the text is kept as a
// single page.
func splitOCRPages(text string) []string {
	pages := strings.Split(text, "\f")
	for i := range pages {
		pages[i] = strings.TrimSpace(pages[i])
	}
	return pages
}

// GetPageCount returns the total number of pages in the PDF
func (p *PDFExtractor) GetPageCount(content []byte) (int, error) {
	if len(content) == 0 {
		return 0, fmt.Errorf("empty PDF content")
	}

	content = sanitizePDF(content)
	reader := bytes.NewReader(content)

	pdfReader, err := pdf.NewReader(reader, int64(len(content)))
	if err != nil {
		return 0, fmt.Errorf("failed to parse PDF: %w", err)
	}

	return pdfReader.NumPage(), nil
}
