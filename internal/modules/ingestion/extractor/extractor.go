package extractor

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

const DefaultMaxBytes int64 = 20 << 20

var (
	ErrEmpty    = errors.New("no extractable text")
	ErrTooLarge = errors.New("upload exceeds size limit")
)

// Extract returns the plain text of an upload. PDFs are read page by page; anything else
// is treated as UTF-8 with invalid sequences replaced.
func Extract(name, mimeType string, data []byte) (string, error) {
	var (
		text string
		err  error
	)
	if IsPDF(name, mimeType, data) {
		text, err = extractPDF(data)
		if err != nil {
			return "", err
		}
	} else {
		text = strings.ToValidUTF8(string(data), string(utf8.RuneError))
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrEmpty
	}
	return text, nil
}

func IsPDF(name, mimeType string, data []byte) bool {
	if strings.EqualFold(filepath.Ext(name), ".pdf") {
		return true
	}
	if strings.Contains(strings.ToLower(mimeType), "pdf") {
		return true
	}
	return bytes.HasPrefix(data, []byte("%PDF-"))
}

func extractPDF(data []byte) (out string, err error) {
	// the pdf reader panics on some malformed xref tables
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("read pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		txt, perr := page.GetPlainText(nil)
		if perr != nil {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(txt)
	}
	return b.String(), nil
}
