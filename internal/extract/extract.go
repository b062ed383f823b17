package extract

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	gmtext "github.com/yuin/goldmark/text"

	appErr "github.com/docuchat/docuchat/internal/pkg/errors"
)

// Supported reports whether the filename's extension maps to a known
// extractor. Checked before any byte of the upload is parsed.
func Supported(filename string) bool {
	switch ext(filename) {
	case ".pdf", ".docx", ".doc", ".md", ".markdown":
		return true
	}
	return false
}

// Text converts raw document bytes into plain text, dispatching on the
// filename extension. Reading order follows the source format: PDF pages in
// order, Word paragraphs in order, markdown blocks in order.
func Text(filename string, data []byte) (string, error) {
	switch ext(filename) {
	case ".pdf":
		return pdfText(data)
	case ".docx", ".doc":
		return docxText(data)
	case ".md", ".markdown":
		return markdownText(data)
	default:
		return "", fmt.Errorf("%w: %s", appErr.ErrUnsupportedFormat, ext(filename))
	}
}

func ext(filename string) string {
	return strings.ToLower(filepath.Ext(filename))
}

func pdfText(data []byte) (text string, err error) {
	// The pdf library panics on some malformed files.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: pdf parse: %v", appErr.ErrExtractionFailed, r)
		}
	}()
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: pdf parse: %v", appErr.ErrExtractionFailed, err)
	}
	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("%w: pdf page %d: %v", appErr.ErrExtractionFailed, i, err)
		}
		sb.WriteString(pageText)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

func docxText(data []byte) (string, error) {
	reader, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: docx parse: %v", appErr.ErrExtractionFailed, err)
	}
	defer reader.Close()

	content := reader.Editable().GetContent()
	var sb strings.Builder
	for _, paragraph := range strings.Split(content, "</w:p>") {
		text := runText(paragraph)
		if strings.TrimSpace(text) == "" {
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

// runText collects the contents of all <w:t> runs in one paragraph of
// document.xml.
func runText(fragment string) string {
	var sb strings.Builder
	rest := fragment
	for {
		start := strings.Index(rest, "<w:t")
		if start < 0 {
			break
		}
		rest = rest[start+len("<w:t"):]
		gt := strings.Index(rest, ">")
		if gt < 0 {
			break
		}
		rest = rest[gt+1:]
		end := strings.Index(rest, "</w:t>")
		if end < 0 {
			break
		}
		sb.WriteString(rest[:end])
		rest = rest[end+len("</w:t>"):]
	}
	return sb.String()
}

func markdownText(data []byte) (string, error) {
	md := goldmark.New()
	reader := gmtext.NewReader(data)
	doc := md.Parser().Parse(reader)

	var blocks []string
	for node := doc.FirstChild(); node != nil; node = node.NextSibling() {
		text := nodeText(node, data)
		if text == "" {
			continue
		}
		blocks = append(blocks, text)
	}
	return strings.Join(blocks, "\n\n"), nil
}

func nodeText(n gmast.Node, source []byte) string {
	var sb strings.Builder
	_ = gmast.Walk(n, func(node gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch t := node.(type) {
		case *gmast.Text:
			sb.Write(t.Segment.Value(source))
			if t.SoftLineBreak() || t.HardLineBreak() {
				sb.WriteString(" ")
			}
		case *gmast.FencedCodeBlock, *gmast.CodeBlock:
			block := node.(interface{ Lines() *gmtext.Segments })
			for i := 0; i < block.Lines().Len(); i++ {
				line := block.Lines().At(i)
				sb.Write(line.Value(source))
			}
		}
		return gmast.WalkContinue, nil
	})
	return strings.TrimSpace(sb.String())
}
