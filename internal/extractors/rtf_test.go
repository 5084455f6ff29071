package extractors

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func mustExtractRTF(t *testing.T, src string) string {
	t.Helper()
	res, err := extractRTF([]byte(src), "text/rtf", nil)
	require.NoError(t, err)
	return res.Content
}

func TestRTFDecodesHexEscapes(t *testing.T) {
	content := mustExtractRTF(t, `{\rtf1 caf\'e9}`)
	require.Contains(t, content, "café") // \'e9 -> U+00E9
}

func TestRTFDecodesWindows1252Apostrophe(t *testing.T) {
	content := mustExtractRTF(t, `{\rtf1 it\'92s}`)
	require.Contains(t, content, "it’s") // \'92 -> U+2019
}

func TestRTFParIntroducesBlankLineOnlyWhenNeeded(t *testing.T) {
	content := mustExtractRTF(t, `{\rtf1 hello\par world}`)
	require.Equal(t, "hello\n\nworld", content)
}

func TestRTFUnicodeEscapeSignedWrap(t *testing.T) {
	content := mustExtractRTF(t, `{\rtf1 \u-3654?}`)
	require.Contains(t, content, string(rune(65536-3654)))
}

func TestRTFPictureTokenWithDimensions(t *testing.T) {
	content := mustExtractRTF(t, `{\rtf1 {\pict\jpegblip\picwgoal1440\pichgoal2880 0102}}`)
	require.Contains(t, content, `![image](image.jpg width="1.0in" height="2.0in")`)
}
