// Package extract turns stored PDF files into plain text. The actual
// extraction is delegated to the external pdftotext binary; the
// CommandRunner seam keeps the package testable without poppler
// installed.
package extract

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"ragchat/entities"
)

// Extractor yields the plain text of a stored document.
type Extractor interface {
	Text(ctx context.Context, path string) (string, error)
}

// CommandRunner executes an external command and returns its stdout.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// PDFToText extracts text via the pdftotext command line tool.
type PDFToText struct {
	runner CommandRunner
	binary string
}

func NewPDFToText() *PDFToText {
	return &PDFToText{runner: execRunner{}, binary: "pdftotext"}
}

// NewPDFToTextWithRunner injects a custom runner. Used by tests.
func NewPDFToTextWithRunner(r CommandRunner) *PDFToText {
	return &PDFToText{runner: r, binary: "pdftotext"}
}

func (p *PDFToText) Text(ctx context.Context, path string) (string, error) {
	out, err := p.runner.Run(ctx, p.binary, "-layout", "-enc", "UTF-8", path, "-")
	if err != nil {
		return "", fmt.Errorf("pdftotext %s: %w", path, err)
	}
	text := string(out)
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("no text could be extracted from %s", path)
	}
	return text, nil
}

// Mock returns canned text per path; unknown paths fail.
type Mock struct {
	Texts map[string]string
	Err   error
}

func (m *Mock) Text(_ context.Context, path string) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	if t, ok := m.Texts[path]; ok {
		return t, nil
	}
	return "", &entities.ProcessingError{Filename: path, Err: fmt.Errorf("no mock text for %s", path)}
}
