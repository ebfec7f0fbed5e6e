package ingest

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"research-portal/internal/common"
)

// minimalPDF assembles a syntactically valid single-page PDF with a correct
// xref table, computing byte offsets rather than hardcoding them.
func minimalPDF() []byte {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")

	objects := []string{
		"1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n",
		"2 0 obj\n<< /Type /Pages /Kids [3 0 R] /Count 1 >>\nendobj\n",
		"3 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << >> >>\nendobj\n",
	}
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		buf.WriteString(obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

func TestPreflightPDF_ValidDocument(t *testing.T) {
	pages, err := PreflightPDF(minimalPDF())
	require.NoError(t, err)
	assert.Equal(t, 1, pages)
}

func TestPreflightPDF_Empty(t *testing.T) {
	_, err := PreflightPDF(nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestPreflightPDF_NotAPDF(t *testing.T) {
	_, err := PreflightPDF([]byte("PK\x03\x04 this is a zip, not a pdf"))
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestPreflightPDF_TruncatedPDF(t *testing.T) {
	doc := minimalPDF()
	_, err := PreflightPDF(doc[:len(doc)/3])
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}
