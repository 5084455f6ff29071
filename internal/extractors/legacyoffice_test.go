package extractors

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kreuzberg-go/kreuzberg/internal/kerr"
)

func TestLegacyOfficeSurfacesMissingDependencyWithoutLibreOffice(t *testing.T) {
	t.Setenv("KREUZBERG_LIBREOFFICE_PATH", "")
	t.Setenv("SOFFICE_PATH", "")
	t.Setenv("LIBREOFFICE_PATH", "")
	t.Setenv("PATH", "/nonexistent")

	_, err := extractLegacyOffice([]byte("fake doc bytes"), "application/msword", nil)
	require.Error(t, err)
	require.Equal(t, kerr.KindMissingDependency, kerr.KindOf(err))
}
