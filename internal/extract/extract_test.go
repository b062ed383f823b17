package extract

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	appErr "github.com/docuchat/docuchat/internal/pkg/errors"
)

func TestSupported(t *testing.T) {
	require.True(t, Supported("report.pdf"))
	require.True(t, Supported("REPORT.PDF"))
	require.True(t, Supported("notes.docx"))
	require.True(t, Supported("old.doc"))
	require.True(t, Supported("readme.md"))
	require.True(t, Supported("readme.markdown"))

	require.False(t, Supported("data.csv"))
	require.False(t, Supported("image.png"))
	require.False(t, Supported("archive.zip"))
	require.False(t, Supported("noextension"))
}

func TestTextUnsupportedFormat(t *testing.T) {
	_, err := Text("data.csv", []byte("a,b,c"))
	require.ErrorIs(t, err, appErr.ErrUnsupportedFormat)
}

func TestTextCorruptPDF(t *testing.T) {
	_, err := Text("broken.pdf", []byte("this is not a pdf at all"))
	require.ErrorIs(t, err, appErr.ErrExtractionFailed)
}

func TestTextCorruptDocx(t *testing.T) {
	_, err := Text("broken.docx", []byte("this is not a zip archive"))
	require.ErrorIs(t, err, appErr.ErrExtractionFailed)
}

func TestTextMarkdown(t *testing.T) {
	md := `# Title

First paragraph with *emphasis* and [a link](https://example.com).

- item one
- item two

` + "```go\nfmt.Println(\"hello\")\n```\n"
	text, err := Text("doc.md", []byte(md))
	require.NoError(t, err)
	require.Contains(t, text, "Title")
	require.Contains(t, text, "First paragraph with emphasis and a link.")
	require.Contains(t, text, "item one")
	require.Contains(t, text, "item two")
	require.Contains(t, text, `fmt.Println("hello")`)
	require.NotContains(t, text, "```")
	require.NotContains(t, text, "# ")
}

func TestTextDocx(t *testing.T) {
	text, err := Text("doc.docx", buildDocx(t, []string{"First paragraph.", "Second paragraph."}))
	require.NoError(t, err)
	require.Contains(t, text, "First paragraph.")
	require.Contains(t, text, "Second paragraph.")
}

// buildDocx assembles the minimal zip layout the docx reader accepts.
func buildDocx(t *testing.T, paragraphs []string) []byte {
	t.Helper()
	var body bytes.Buffer
	body.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	for _, p := range paragraphs {
		body.WriteString(`<w:p><w:r><w:t>` + p + `</w:t></w:r></w:p>`)
	}
	body.WriteString(`</w:body></w:document>`)

	files := map[string]string{
		"[Content_Types].xml": `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
			`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
			`<Default Extension="xml" ContentType="application/xml"/>` +
			`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
			`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>` +
			`</Types>`,
		"_rels/.rels": `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
			`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
			`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>` +
			`</Relationships>`,
		"word/_rels/document.xml.rels": `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
			`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`,
		"word/document.xml": body.String(),
	}

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range files {
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = f.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}
