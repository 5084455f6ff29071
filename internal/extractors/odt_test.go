package extractors

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func buildODT(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	f, err := w.Create("content.xml")
	require.NoError(t, err)
	_, err = f.Write([]byte(`<?xml version="1.0"?>
<office:document-content xmlns:office="o" xmlns:text="t" xmlns:table="tb">
<office:body><office:text>
  <text:p>Hello from ODT</text:p>
  <table:table>
    <table:table-row><table:table-cell><text:p>A1</text:p></table:table-cell><table:table-cell><text:p>B1</text:p></table:table-cell></table:table-row>
  </table:table>
</office:text></office:body>
</office:document-content>`))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestODTExtractsParagraphAndTable(t *testing.T) {
	res, err := extractODT(buildODT(t), "application/vnd.oasis.opendocument.text", nil)
	require.NoError(t, err)
	require.Contains(t, res.Content, "Hello from ODT")
	require.Len(t, res.Tables, 1)
	require.Equal(t, [][]string{{"A1", "B1"}}, res.Tables[0].Cells)
}

func buildODTTableWithPipeAndMultiParagraphCell(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	f, err := w.Create("content.xml")
	require.NoError(t, err)
	_, err = f.Write([]byte(`<?xml version="1.0"?>
<office:document-content xmlns:office="o" xmlns:text="t" xmlns:table="tb">
<office:body><office:text>
  <table:table>
    <table:table-row>
      <table:table-cell><text:p>A | B</text:p></table:table-cell>
      <table:table-cell><text:p>Foo</text:p><text:p>Bar</text:p></table:table-cell>
    </table:table-row>
  </table:table>
</office:text></office:body>
</office:document-content>`))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestODTEscapesPipeAndJoinsMultiParagraphCells(t *testing.T) {
	res, err := extractODT(buildODTTableWithPipeAndMultiParagraphCell(t), "application/vnd.oasis.opendocument.text", nil)
	require.NoError(t, err)
	require.Len(t, res.Tables, 1)
	require.Equal(t, [][]string{{"A | B", "Foo Bar"}}, res.Tables[0].Cells)
	require.Contains(t, res.Tables[0].Markdown, `A \| B`)
	require.Contains(t, res.Tables[0].Markdown, "Foo Bar")
	require.NotContains(t, res.Tables[0].Markdown, "FooBar")
}
