package extractors

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleOrg = `#+TITLE: My Notes
#+AUTHOR: Katherine Johnson
#+DATE: 2026-02-01
* Introduction
Some text.
** Details
- point one
- point two
`

func TestOrgModeExtractsMetadataAndHeadlines(t *testing.T) {
	res, err := extractOrgMode([]byte(sampleOrg), "text/x-org", nil)
	require.NoError(t, err)
	require.Equal(t, "My Notes", res.Metadata.Title)
	require.Equal(t, []string{"Katherine Johnson"}, res.Metadata.Authors)
	require.Equal(t, "2026-02-01", res.Metadata.Date)
	require.Contains(t, res.Content, "# Introduction")
	require.Contains(t, res.Content, "## Details")
	require.Contains(t, res.Content, "- point one")
}
