package pdfextract

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

var ErrEmptyFile = errors.New("pdf content is empty")

// ExtractText returns the plain text of every page, each followed by a
// newline. Pages without a content stream contribute an empty line.
func ExtractText(content []byte) (text string, err error) {
	if len(content) == 0 {
		return "", ErrEmptyFile
	}
	// The parser panics on some malformed streams.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("open pdf failed: %w", err)
	}

	var out strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			out.WriteString("\n")
			continue
		}
		pageText, pageErr := page.GetPlainText(nil)
		if pageErr != nil {
			return "", fmt.Errorf("extract page %d failed: %w", i, pageErr)
		}
		out.WriteString(pageText)
		out.WriteString("\n")
	}
	return out.String(), nil
}
