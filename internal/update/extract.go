package update

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/ytget/rollcall/internal/platform"
)

// IsTopLevelEntry reports whether a zip entry lies at the root or directly
// inside a root directory
func IsTopLevelEntry(name string) bool {
	return strings.Count(name, "/") <= 1
}

// ExtractTopLevel unpacks the top-level entries of archivePath into destDir.
// Deeper entries are skipped.
func ExtractTopLevel(archivePath, destDir string) error {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrArchive, err)
	}
	defer r.Close()

	absDest, err := filepath.Abs(destDir)
	if err != nil {
		return fmt.Errorf("failed to resolve target directory: %w", err)
	}
	if err := platform.CreateDirectoryIfNotExists(absDest); err != nil {
		return err
	}

	extracted, skipped := 0, 0
	for _, f := range r.File {
		if !IsTopLevelEntry(f.Name) {
			skipped++
			continue
		}

		target := filepath.Join(absDest, filepath.FromSlash(f.Name))
		if target != absDest && !strings.HasPrefix(target, absDest+string(os.PathSeparator)) {
			return fmt.Errorf("%w: path traversal attempt detected in archive: %s", ErrArchive, f.Name)
		}

		if f.FileInfo().IsDir() {
			if err := platform.CreateDirectoryIfNotExists(target); err != nil {
				return err
			}
			continue
		}
		if err := extractFile(f, target); err != nil {
			return err
		}
		extracted++
	}

	log.Debug().Int("extracted", extracted).Int("skipped", skipped).Str("dest", absDest).Msg("update archive extracted")
	return nil
}

func extractFile(f *zip.File, target string) error {
	if err := platform.CreateDirectoryIfNotExists(filepath.Dir(target)); err != nil {
		return err
	}

	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("%w: open %s: %v", ErrArchive, f.Name, err)
	}
	defer rc.Close()

	mode := f.Mode().Perm()
	if mode == 0 {
		mode = platform.DefaultFilePermissions
	}
	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return fmt.Errorf("create %s: %w", target, err)
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return fmt.Errorf("%w: read %s: %v", ErrArchive, f.Name, err)
	}
	return out.Close()
}
