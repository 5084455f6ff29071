package extractors

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"strings"

	"github.com/kreuzberg-go/kreuzberg/internal/kerr"
	"github.com/kreuzberg-go/kreuzberg/internal/kreuzberg"
)

// NewArchive returns the extractor for ZIP/TAR/TAR.GZ archives (spec.md
// §4.3): it does not recurse into inner files, instead emitting a
// textual listing plus an Archive metadata variant. Archive traversal
// uses the standard library's archive/zip, archive/tar, and
// compress/gzip, since spec.md §1 places "ZIP" among the third-party
// native libraries specified only by contract, and no pack example
// wires a third-party archive reader for Go to follow instead.
func NewArchive() Extractor {
	return &Base{
		NameValue:     "archive",
		PriorityValue: 0,
		MimeTypes:     []string{"application/zip", "application/x-tar", "application/x-gtar", "application/gzip"},
		DoExtract:     extractArchive,
	}
}

func extractArchive(data []byte, mime string, cfg *kreuzberg.ExtractionConfig) (*kreuzberg.ExtractionResult, error) {
	var (
		format   string
		entries  []archiveEntry
		err      error
	)

	switch mime {
	case "application/zip":
		format = "ZIP"
		entries, err = listZip(data)
	case "application/x-tar":
		format = "TAR"
		entries, err = listTar(bytes.NewReader(data))
	case "application/x-gtar", "application/gzip":
		format = "TAR.GZ"
		entries, err = listTarGz(data)
	default:
		return nil, kerr.UnsupportedFormat(mime)
	}
	if err != nil {
		return nil, kerr.Parsing("malformed archive", err)
	}

	result := kreuzberg.New(mime)
	var sb strings.Builder
	var totalSize int64
	fileList := make([]string, 0, len(entries))
	fmt.Fprintf(&sb, "Archive: %s (%d files)\n\n", format, len(entries))
	for _, e := range entries {
		fmt.Fprintf(&sb, "%s (%d bytes)\n", e.name, e.size)
		if e.preview != "" {
			sb.WriteString(e.preview)
			sb.WriteString("\n")
		}
		totalSize += e.size
		fileList = append(fileList, e.name)
	}

	result.Content = sb.String()
	result.Metadata.Format = &kreuzberg.FormatMetadata{
		Kind: kreuzberg.FormatArchive,
		Archive: &kreuzberg.ArchiveMetadata{
			Format:    format,
			FileCount: len(entries),
			TotalSize: totalSize,
			FileList:  fileList,
		},
	}
	return result, nil
}

type archiveEntry struct {
	name    string
	size    int64
	preview string
}

const previewLimit = 4096

func listZip(data []byte) ([]archiveEntry, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}
	var entries []archiveEntry
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		e := archiveEntry{name: f.Name, size: int64(f.UncompressedSize64)}
		if rc, err := f.Open(); err == nil {
			e.preview = readPreview(rc)
			rc.Close()
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func listTar(r io.Reader) ([]archiveEntry, error) {
	tr := tar.NewReader(r)
	var entries []archiveEntry
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		entries = append(entries, archiveEntry{
			name:    hdr.Name,
			size:    hdr.Size,
			preview: readPreview(tr),
		})
	}
	return entries, nil
}

func listTarGz(data []byte) ([]archiveEntry, error) {
	gz, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer gz.Close()
	return listTar(gz)
}

func readPreview(r io.Reader) string {
	buf := make([]byte, previewLimit)
	n, _ := io.ReadFull(r, buf)
	buf = buf[:n]
	if !isProbablyText(buf) {
		return ""
	}
	return string(buf)
}

func isProbablyText(b []byte) bool {
	for _, c := range b {
		if c == 0 {
			return false
		}
	}
	return true
}
