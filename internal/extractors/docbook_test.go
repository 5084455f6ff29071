package extractors

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleDocBook = `<?xml version="1.0"?>
<article>
  <title>Getting Started</title>
  <section>
    <title>Installation</title>
    <para>Run the installer.</para>
    <itemizedlist>
      <listitem>Download</listitem>
      <listitem>Run</listitem>
    </itemizedlist>
  </section>
</article>`

func TestDocBookExtractsTitleAndStructure(t *testing.T) {
	res, err := extractDocBook([]byte(sampleDocBook), "application/docbook+xml", nil)
	require.NoError(t, err)
	require.Equal(t, "Getting Started", res.Metadata.Title)
	require.Contains(t, res.Content, "# Getting Started")
	require.Contains(t, res.Content, "## Installation")
	require.Contains(t, res.Content, "Run the installer.")
	require.Contains(t, res.Content, "- Download")
	require.Contains(t, res.Content, "- Run")
}
