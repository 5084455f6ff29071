package mimetype

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDetectExtensionWinsOverSniffing(t *testing.T) {
	mt, err := Detect("report.pdf", []byte("not actually a pdf"), true)
	require.NoError(t, err)
	require.Equal(t, "application/pdf", mt)
}

func TestDetectMultiSegmentExtension(t *testing.T) {
	mt, err := Detect("archive.tar.gz", nil, false)
	require.NoError(t, err)
	require.Equal(t, "application/x-gtar", mt)
}

func TestDetectFallsBackToSniffing(t *testing.T) {
	mt, err := Detect("mystery", []byte("%PDF-1.7 ..."), true)
	require.NoError(t, err)
	require.Equal(t, "application/pdf", mt)
}

func TestDetectUnknownFails(t *testing.T) {
	_, err := Detect("mystery", []byte("plain junk"), true)
	require.Error(t, err)
}

func TestValidateAcceptsSupportedFamilies(t *testing.T) {
	for _, mt := range []string{"text/plain", "application/pdf", "application/zip", "image/png"} {
		require.NoError(t, Validate(mt), mt)
	}
	require.NoError(t, Validate("image/*"))
}

func TestValidateRejectsUnsupported(t *testing.T) {
	err := Validate("application/x-executable")
	require.Error(t, err)
	require.Contains(t, err.Error(), "application/x-executable")
}
