package platform

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
)

// Operating system constants
const (
	OSDarwin  = "darwin"
	OSWindows = "windows"
	OSLinux   = "linux"
)

// File permissions
const (
	DefaultDirPermissions  = 0755
	DefaultFilePermissions = 0644
)

// AppDirName is the directory created under the user config dir
const AppDirName = "rollcall"

// CreateDirectoryIfNotExists creates directory if it doesn't exist
func CreateDirectoryIfNotExists(dirPath string) error {
	if _, err := os.Stat(dirPath); os.IsNotExist(err) {
		return os.MkdirAll(dirPath, DefaultDirPermissions)
	}
	return nil
}

// GetAppDataDir returns the per-user directory holding the name list and settings
func GetAppDataDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		homeDir, herr := os.UserHomeDir()
		if herr != nil {
			return "", fmt.Errorf("failed to get user config directory: %w", err)
		}
		return filepath.Join(homeDir, "."+AppDirName), nil
	}
	return filepath.Join(configDir, AppDirName), nil
}

// ExecutableDir returns the directory of the running binary with symlinks resolved
func ExecutableDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to locate executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe), nil
}

// ExecutableName appends the platform executable suffix to a base name
func ExecutableName(base string) string {
	if runtime.GOOS == OSWindows && filepath.Ext(base) != ".exe" {
		return base + ".exe"
	}
	return base
}

// WriteFileAtomic writes data to a temp file in the target directory and
// renames it over path, creating parent directories as needed.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := CreateDirectoryIfNotExists(dir); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, DefaultFilePermissions); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

// CopyTree copies every file under srcDir into dstDir, overwriting files that
// exist in both and leaving files only present in dstDir untouched. The first
// failing item aborts the copy; the returned error names the relative path.
// It returns the number of files copied.
func CopyTree(srcDir, dstDir string) (int, error) {
	info, err := os.Stat(srcDir)
	if err != nil {
		return 0, fmt.Errorf("source directory: %w", err)
	}
	if !info.IsDir() {
		return 0, fmt.Errorf("source is not a directory: %s", srcDir)
	}
	if err := os.MkdirAll(dstDir, DefaultDirPermissions); err != nil {
		return 0, fmt.Errorf("failed to create target directory: %w", err)
	}

	copied := 0
	err = filepath.WalkDir(srcDir, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		target := filepath.Join(dstDir, rel)

		if d.IsDir() {
			if err := os.MkdirAll(target, DefaultDirPermissions); err != nil {
				return fmt.Errorf("copy %s: %w", rel, err)
			}
			return nil
		}
		if err := copyFile(path, target); err != nil {
			return fmt.Errorf("copy %s: %w", rel, err)
		}
		copied++
		return nil
	})
	return copied, err
}

// copyFile copies a single file preserving its mode bits
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}

// RemoveDirIfEmpty removes dirPath when it exists and has no entries
func RemoveDirIfEmpty(dirPath string) bool {
	entries, err := os.ReadDir(dirPath)
	if err != nil || len(entries) > 0 {
		return false
	}
	return os.Remove(dirPath) == nil
}
