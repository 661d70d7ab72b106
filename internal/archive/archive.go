// Package archive extracts downloaded report archives. Report downloads
// from the test hub arrive as zip files containing HTML reports, logs, and
// attachments; this package unpacks them safely under a destination
// directory.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mrchris2000/mcp-devops-test/pkg/logging"
)

// maxExtractedSize caps the total uncompressed size of an archive to guard
// against decompression bombs in hub-supplied report bundles.
const maxExtractedSize = 1 << 30 // 1 GiB

// ExtractZip unpacks the zip archive at src into destDir and returns the
// relative paths of the extracted files. Entries that would escape destDir
// are rejected.
func ExtractZip(src, destDir string) ([]string, error) {
	reader, err := zip.OpenReader(src)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive %s: %w", src, err)
	}
	defer reader.Close()

	if err := os.MkdirAll(destDir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create extraction directory: %w", err)
	}

	var extracted []string
	var total int64
	for _, file := range reader.File {
		if file.FileInfo().IsDir() {
			continue
		}

		total += int64(file.UncompressedSize64)
		if total > maxExtractedSize {
			return nil, fmt.Errorf("archive %s exceeds extraction size limit", src)
		}

		relPath, err := safeRelPath(file.Name)
		if err != nil {
			return nil, err
		}

		if err := extractFile(file, filepath.Join(destDir, relPath)); err != nil {
			return nil, err
		}
		extracted = append(extracted, relPath)
	}

	logging.Debug("Archive", "Extracted %d files from %s to %s", len(extracted), src, destDir)
	return extracted, nil
}

// safeRelPath normalizes an archive entry name and rejects entries that
// would escape the extraction directory (zip-slip).
func safeRelPath(name string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(name))
	if filepath.IsAbs(cleaned) || cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("archive entry %q escapes extraction directory", name)
	}
	return cleaned, nil
}

func extractFile(file *zip.File, destPath string) error {
	if err := os.MkdirAll(filepath.Dir(destPath), 0o700); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", destPath, err)
	}

	in, err := file.Open()
	if err != nil {
		return fmt.Errorf("failed to open archive entry %s: %w", file.Name, err)
	}
	defer in.Close()

	out, err := os.OpenFile(destPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", destPath, err)
	}
	defer out.Close()

	// LimitReader guards against entries whose header understates their size.
	if _, err := io.Copy(out, io.LimitReader(in, maxExtractedSize)); err != nil {
		return fmt.Errorf("failed to extract %s: %w", file.Name, err)
	}
	return nil
}
