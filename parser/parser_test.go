package parser

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRegistryDispatch(t *testing.T) {
	r := NewRegistry()
	for _, format := range []string{"txt", "md", "pdf", "xlsx"} {
		p, err := r.Get(format)
		require.NoError(t, err, format)
		assert.Contains(t, p.SupportedFormats(), format)
	}

	_, err := r.Get("docx")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestRegistryRegisterOverride(t *testing.T) {
	r := NewRegistry()
	custom := &TextParser{}
	r.Register("log", custom)

	p, err := r.Get("log")
	require.NoError(t, err)
	assert.Same(t, Parser(custom), p)
}

func TestLoadText(t *testing.T) {
	path := writeTempFile(t, "doc.txt", "张三在北京大学工作。")

	res, err := NewRegistry().Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "张三在北京大学工作。", res.Text)
	assert.Equal(t, "txt", res.Format)
}

func TestLoadMarkdownCaseInsensitiveExt(t *testing.T) {
	path := writeTempFile(t, "doc.MD", "# 标题\n正文")

	res, err := NewRegistry().Load(context.Background(), path)
	require.NoError(t, err)
	assert.Contains(t, res.Text, "正文")
}

func TestLoadUnsupportedExtension(t *testing.T) {
	path := writeTempFile(t, "doc.docx", "ignored")

	_, err := NewRegistry().Load(context.Background(), path)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := NewRegistry().Load(context.Background(), filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func TestLoadXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.xlsx")

	f := excelize.NewFile()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "张三"))
	require.NoError(t, f.SetCellValue("Sheet1", "B1", "北京大学"))
	require.NoError(t, f.SetCellValue("Sheet1", "A2", "李四"))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	res, err := NewRegistry().Load(context.Background(), path)
	require.NoError(t, err)
	assert.Contains(t, res.Text, "张三")
	assert.Contains(t, res.Text, "北京大学")
	assert.Contains(t, res.Text, "李四")
	assert.Equal(t, 1, res.Pages)
}
