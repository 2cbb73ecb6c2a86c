package source

import (
	"bytes"
	"context"
	"io"
	"os/exec"

	"github.com/ledongthuc/pdf"
	"github.com/rotisserie/eris"
)

// NewTextProvider creates a TextProvider based on config. The native
// provider needs no external binary; pdftotext handles layouts the native
// reader mangles.
func NewTextProvider(provider, pdfToTextPath string) (TextProvider, error) {
	switch provider {
	case "native", "":
		return &NativeText{}, nil
	case "pdftotext":
		return NewPdfToText(pdfToTextPath), nil
	default:
		return nil, eris.Errorf("source: unknown text provider %q", provider)
	}
}

// NativeText extracts text with the pure-Go PDF reader.
type NativeText struct{}

func (NativeText) ExtractText(ctx context.Context, pdfPath string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	f, r, err := pdf.Open(pdfPath)
	if err != nil {
		return "", eris.Wrapf(err, "source: open pdf %s", pdfPath)
	}
	defer f.Close()

	reader, err := r.GetPlainText()
	if err != nil {
		return "", eris.Wrapf(err, "source: extract text from %s", pdfPath)
	}
	text, err := io.ReadAll(reader)
	if err != nil {
		return "", eris.Wrapf(err, "source: read text from %s", pdfPath)
	}
	return string(text), nil
}

// PdfToText extracts text from PDFs using the pdftotext CLI tool.
type PdfToText struct {
	binPath string
}

// NewPdfToText creates a PdfToText provider. If binPath is empty, "pdftotext"
// is used.
func NewPdfToText(binPath string) *PdfToText {
	if binPath == "" {
		binPath = "pdftotext"
	}
	return &PdfToText{binPath: binPath}
}

// ExtractText runs pdftotext -layout on the given PDF and returns stdout.
func (p *PdfToText) ExtractText(ctx context.Context, pdfPath string) (string, error) {
	cmd := exec.CommandContext(ctx, p.binPath, "-layout", pdfPath, "-")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", eris.Wrapf(err, "source: pdftotext failed for %s: %s", pdfPath, stderr.String())
	}
	return stdout.String(), nil
}
