package extractors

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleTypst = `#set document(title: "Typst Sample", author: "Grace Hopper")
= Introduction

This is *bold* text.

- First item
- Second item

== Subsection
More text here.
`

func TestTypstExtractsHeadingsMetadataAndLists(t *testing.T) {
	res, err := extractTypst([]byte(sampleTypst), "text/x-typst", nil)
	require.NoError(t, err)
	require.Equal(t, "Typst Sample", res.Metadata.Title)
	require.Equal(t, []string{"Grace Hopper"}, res.Metadata.Authors)
	require.Contains(t, res.Content, "# Introduction")
	require.Contains(t, res.Content, "## Subsection")
	require.Contains(t, res.Content, "**bold**")
	require.Contains(t, res.Content, "- First item")
}
