package resume

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFile_PlainText(t *testing.T) {
	p := NewParser(t.TempDir())

	doc, err := p.ParseFile("resume.txt", strings.NewReader("Jane Doe\nBackend Engineer\n"))
	require.NoError(t, err)
	assert.Equal(t, "resume.txt", doc.Filename)
	assert.Equal(t, ".txt", doc.FileType)
	assert.Equal(t, "Jane Doe\nBackend Engineer", doc.FullText)
	assert.Equal(t, int64(26), doc.FileSize)
}

func TestParseFile_UnsupportedType(t *testing.T) {
	p := NewParser(t.TempDir())

	_, err := p.ParseFile("resume.exe", strings.NewReader("binary"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file type")
}

func TestParseFile_StripsDirectoryComponents(t *testing.T) {
	p := NewParser(t.TempDir())

	doc, err := p.ParseFile("../../etc/resume.txt", strings.NewReader("text"))
	require.NoError(t, err)
	assert.Equal(t, "resume.txt", doc.Filename)
}
