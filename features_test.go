package kreuzberg

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/cucumber/godog"
	"github.com/stretchr/testify/require"
)

// extractionWorld carries one scenario's state between steps, reset
// before every scenario by the ctx.Before hook in InitializeScenario.
type extractionWorld struct {
	core   *Core
	data   []byte
	mime   string
	cfg    *ExtractionConfig
	result *ExtractionResult
	err    error
}

func (w *extractionWorld) theInputBytesWithMime(content, mime string) error {
	w.data = []byte(unescapeNewlines(content))
	w.mime = mime
	return nil
}

func (w *extractionWorld) theDefaultExtractionConfig() error {
	w.cfg = DefaultConfig()
	return nil
}

func (w *extractionWorld) inputTextOfRepeatedCharactersWithMime(n int, char, mime string) error {
	w.data = bytes.Repeat([]byte(char), n)
	w.mime = mime
	return nil
}

func (w *extractionWorld) aChunkingConfigWith(maxChars, maxOverlap int) error {
	if w.cfg == nil {
		w.cfg = DefaultConfig()
	}
	w.cfg.Chunking = &ChunkingConfig{MaxChars: maxChars, MaxOverlap: maxOverlap}
	return nil
}

func (w *extractionWorld) languageDetectionEnabledWithMinConfidence(minConfidence float64) error {
	if w.cfg == nil {
		w.cfg = DefaultConfig()
	}
	w.cfg.LanguageDetection.Enabled = true
	w.cfg.LanguageDetection.MinConfidence = minConfidence
	return nil
}

func (w *extractionWorld) aZIPArchiveContainingWithContent(name, content string) error {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	f, err := zw.Create(name)
	if err != nil {
		return err
	}
	if _, err := f.Write([]byte(content)); err != nil {
		return err
	}
	if err := zw.Close(); err != nil {
		return err
	}
	w.data = buf.Bytes()
	w.mime = "application/zip"
	return nil
}

func (w *extractionWorld) iExtractTheInput() error {
	if w.core == nil {
		core, err := New()
		if err != nil {
			return err
		}
		w.core = core
	}
	if w.cfg == nil {
		w.cfg = DefaultConfig()
	}
	w.result, w.err = w.core.Extract(context.Background(), w.data, w.mime, w.cfg)
	return nil
}

func (w *extractionWorld) theResultContentIs(t *testing.T, expected string) {
	require.NoError(t, w.err)
	require.Equal(t, unescapeNewlines(expected), w.result.Content)
}

func (w *extractionWorld) theResultMimeTypeIs(t *testing.T, expected string) {
	require.NoError(t, w.err)
	require.Equal(t, expected, w.result.MimeType)
}

func (w *extractionWorld) theResultHasNoChunks(t *testing.T) {
	require.NoError(t, w.err)
	require.Nil(t, w.result.Chunks)
}

func (w *extractionWorld) theResultHasNoDetectedLanguages(t *testing.T) {
	require.NoError(t, w.err)
	require.Nil(t, w.result.DetectedLanguages)
}

func (w *extractionWorld) theResultHasAtLeastChunks(t *testing.T, n int) {
	require.NoError(t, w.err)
	require.GreaterOrEqual(t, len(w.result.Chunks), n)
}

func (w *extractionWorld) theLastCharsOfChunkEqualTheFirstCharsOfChunk(t *testing.T) {
	require.NoError(t, w.err)
	require.GreaterOrEqual(t, len(w.result.Chunks), 2)
	a := w.result.Chunks[0].Content
	b := w.result.Chunks[1].Content
	require.Equal(t, a[len(a)-20:], b[:20])
}

func (w *extractionWorld) theDetectedLanguagesAre(t *testing.T, expected string) {
	require.NoError(t, w.err)
	require.Equal(t, []string{expected}, w.result.DetectedLanguages)
}

func (w *extractionWorld) theArchiveFormatIs(t *testing.T, expected string) {
	require.NoError(t, w.err)
	require.NotNil(t, w.result.Metadata.Format)
	require.NotNil(t, w.result.Metadata.Format.Archive)
	require.Equal(t, expected, w.result.Metadata.Format.Archive.Format)
}

func (w *extractionWorld) theArchiveFileCountIs(t *testing.T, expected int) {
	require.NoError(t, w.err)
	require.Equal(t, expected, w.result.Metadata.Format.Archive.FileCount)
}

func (w *extractionWorld) theArchiveFileListContains(t *testing.T, expected string) {
	require.NoError(t, w.err)
	require.Contains(t, w.result.Metadata.Format.Archive.FileList, expected)
}

func (w *extractionWorld) theResultContentContains(t *testing.T, expected string) {
	require.NoError(t, w.err)
	require.Contains(t, w.result.Content, expected)
}

func (w *extractionWorld) metadataAdditionalEquals(t *testing.T, key, expected string) {
	require.NoError(t, w.err)
	require.Equal(t, expected, fmt.Sprintf("%v", w.result.Metadata.Additional[key]))
}

func (w *extractionWorld) theResultMetadataDateIs(t *testing.T, expected string) {
	require.NoError(t, w.err)
	require.Equal(t, expected, w.result.Metadata.Date)
}

// unescapeNewlines turns the literal two-character "\n" a .feature file
// can carry inside a quoted step argument into a real newline.
func unescapeNewlines(s string) string {
	return strings.ReplaceAll(s, `\n`, "\n")
}

func InitializeScenario(t *testing.T) func(*godog.ScenarioContext) {
	return func(ctx *godog.ScenarioContext) {
		w := &extractionWorld{}
		ctx.Before(func(c context.Context, _ *godog.Scenario) (context.Context, error) {
			*w = extractionWorld{}
			return c, nil
		})

		ctx.Step(`^the input bytes "([^"]*)" with mime "([^"]*)"$`, w.theInputBytesWithMime)
		ctx.Step(`^the default extraction config$`, w.theDefaultExtractionConfig)
		ctx.Step(`^input text of (\d+) repeated "([^"]*)" characters with mime "([^"]*)"$`, func(n, char, mime string) error {
			count, err := strconv.Atoi(n)
			if err != nil {
				return err
			}
			return w.inputTextOfRepeatedCharactersWithMime(count, char, mime)
		})
		ctx.Step(`^a chunking config with max_chars (\d+) and max_overlap (\d+)$`, func(maxChars, maxOverlap string) error {
			mc, err := strconv.Atoi(maxChars)
			if err != nil {
				return err
			}
			mo, err := strconv.Atoi(maxOverlap)
			if err != nil {
				return err
			}
			return w.aChunkingConfigWith(mc, mo)
		})
		ctx.Step(`^language detection enabled with min_confidence ([0-9.]+)$`, func(minConfidence string) error {
			mc, err := strconv.ParseFloat(minConfidence, 64)
			if err != nil {
				return err
			}
			return w.languageDetectionEnabledWithMinConfidence(mc)
		})
		ctx.Step(`^a ZIP archive containing "([^"]*)" with content "([^"]*)"$`, w.aZIPArchiveContainingWithContent)
		ctx.Step(`^I extract the input$`, w.iExtractTheInput)

		ctx.Step(`^the result content is "([^"]*)"$`, func(expected string) error {
			w.theResultContentIs(t, expected)
			return nil
		})
		ctx.Step(`^the result mime type is "([^"]*)"$`, func(expected string) error {
			w.theResultMimeTypeIs(t, expected)
			return nil
		})
		ctx.Step(`^the result has no chunks$`, func() error {
			w.theResultHasNoChunks(t)
			return nil
		})
		ctx.Step(`^the result has no detected languages$`, func() error {
			w.theResultHasNoDetectedLanguages(t)
			return nil
		})
		ctx.Step(`^the result has at least (\d+) chunks?$`, func(n string) error {
			count, err := strconv.Atoi(n)
			if err != nil {
				return err
			}
			w.theResultHasAtLeastChunks(t, count)
			return nil
		})
		ctx.Step(`^the last 20 characters of chunk 0 equal the first 20 characters of chunk 1$`, func() error {
			w.theLastCharsOfChunkEqualTheFirstCharsOfChunk(t)
			return nil
		})
		ctx.Step(`^the detected languages are "([^"]*)"$`, func(expected string) error {
			w.theDetectedLanguagesAre(t, expected)
			return nil
		})
		ctx.Step(`^the archive format is "([^"]*)"$`, func(expected string) error {
			w.theArchiveFormatIs(t, expected)
			return nil
		})
		ctx.Step(`^the archive file count is (\d+)$`, func(n string) error {
			count, err := strconv.Atoi(n)
			if err != nil {
				return err
			}
			w.theArchiveFileCountIs(t, count)
			return nil
		})
		ctx.Step(`^the archive file list contains "([^"]*)"$`, func(expected string) error {
			w.theArchiveFileListContains(t, expected)
			return nil
		})
		ctx.Step(`^the result content contains "([^"]*)"$`, func(expected string) error {
			w.theResultContentContains(t, expected)
			return nil
		})
		ctx.Step(`^metadata additional "([^"]*)" equals "([^"]*)"$`, func(key, expected string) error {
			w.metadataAdditionalEquals(t, key, expected)
			return nil
		})
		ctx.Step(`^the result metadata date is "([^"]*)"$`, func(expected string) error {
			w.theResultMetadataDateIs(t, expected)
			return nil
		})
	}
}

func TestExtractionFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario(t),
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features"},
			TestingT: t,
		},
	}
	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
