package ingest

import (
	"bytes"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"research-portal/internal/common"
)

var pdfMagic = []byte("%PDF-")

// PreflightPDF verifies an upload is a syntactically valid PDF and returns
// its page count. Running this before the first provider call means a broken
// upload fails immediately instead of burning the attempt budget on a
// document the provider cannot read.
func PreflightPDF(data []byte) (int, error) {
	if len(data) == 0 {
		return 0, fmt.Errorf("%w: empty upload", common.ErrInvalidInput)
	}
	if !bytes.HasPrefix(data, pdfMagic) {
		return 0, fmt.Errorf("%w: not a PDF document", common.ErrInvalidInput)
	}

	pages, err := pageCount(data)
	if err != nil {
		return 0, fmt.Errorf("%w: malformed PDF: %v", common.ErrInvalidInput, err)
	}
	if pages < 1 {
		return 0, fmt.Errorf("%w: PDF has no pages", common.ErrInvalidInput)
	}
	return pages, nil
}

// pageCount parses the document. pdfcpu panics on some truncated inputs
// rather than returning an error, so the parse runs behind a recover that
// turns a panic into an ordinary error.
func pageCount(data []byte) (n int, err error) {
	defer func() {
		if r := recover(); r != nil {
			n = 0
			err = fmt.Errorf("pdf parser panic: %v", r)
		}
	}()
	return api.PageCount(bytes.NewReader(data), nil)
}
