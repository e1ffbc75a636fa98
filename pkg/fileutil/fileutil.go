// Package fileutil provides file system utility functions.
package fileutil

import (
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"strings"
)

// SourceExt is the extension of VM source files.
const SourceExt = ".vm"

// OutputExt is the extension of generated assembly files.
const OutputExt = ".asm"

// HasExt reports whether name ends in ext, ignoring case.
func HasExt(name, ext string) bool {
	return strings.EqualFold(filepath.Ext(name), ext)
}

// IsSourceFile reports whether name is a VM source file (.vm in any case).
func IsSourceFile(name string) bool {
	return HasExt(name, SourceExt)
}

// StripExt returns the base name of p without its extension.
//
// Example:
//
//	StripExt("dir/Main.vm") // "Main"
func StripExt(p string) string {
	base := filepath.Base(p)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// OutputPath derives the assembly path for a source.
//
// Parameters:
//   - source: The source .vm file or directory
//   - isDir: Whether source is a directory
//
// Returns:
//   - string: dir/Foo.vm becomes dir/Foo.asm; directory dir/Prog becomes
//     dir/Prog/Prog.asm, and "." becomes <cwd name>.asm in the current directory
func OutputPath(source string, isDir bool) string {
	if isDir {
		clean := filepath.Clean(source)
		// "." and ".." name the output after the directory they resolve to
		name := filepath.Base(clean)
		if abs, err := filepath.Abs(clean); err == nil {
			name = filepath.Base(abs)
		}
		return filepath.Join(clean, name+OutputExt)
	}
	return strings.TrimSuffix(source, filepath.Ext(source)) + OutputExt
}

// FindFileCaseInsensitiveFS searches for a file with the given name in the specified directory
// using the provided file system (os.DirFS or fstest.MapFS).
// The search is case-insensitive.
//
// Parameters:
//   - fsys: The file system to search in
//   - dir: The directory to search in
//   - filename: The filename to search for (case-insensitive)
//
// Returns:
//   - string: The actual path to the file if found
//   - error: Error if the file is not found or if there's an I/O error
//
// Example:
//
//	p, err := FindFileCaseInsensitiveFS(fsys, "Prog", "main.vm")
//	// Will find "Main.vm", "MAIN.VM", etc.
func FindFileCaseInsensitiveFS(fsys fs.FS, dir, filename string) (string, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return "", fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(entry.Name(), filename) {
			// fs.FS uses forward slashes
			return path.Join(dir, entry.Name()), nil
		}
	}

	return "", fmt.Errorf("file not found: %s (searched in %s): %w", filename, dir, fs.ErrNotExist)
}
