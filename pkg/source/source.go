// Package source はVMソースファイルの検出と読み込みを行う
package source

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/zurustar/hackvm/pkg/fileutil"
	"github.com/zurustar/hackvm/pkg/logger"
)

// DefaultEncoding is used when no encoding is configured.
const DefaultEncoding = "utf-8"

// ErrNoSources is returned when a directory holds no .vm files.
var ErrNoSources = errors.New("no .vm files found")

// ErrNotSource is returned when a single input file is not a .vm file.
var ErrNotSource = errors.New("does not have a .vm file extension")

// File はVMソースファイルを表す
type File struct {
	Name    string // 拡張子なしのファイル名 (static変数とラベルの修飾に使う)
	Path    string // fs.FS上のパス
	Content string // UTF-8に変換された内容
	Size    int64  // 元のバイト数
}

// Lines returns the content split into lines.
func (f File) Lines() []string {
	return strings.Split(f.Content, "\n")
}

// Loader はVMソースファイルの読み込みを行う
type Loader struct {
	fsys     fs.FS
	encoding encoding.Encoding
	log      *slog.Logger
}

// LookupEncoding resolves a WHATWG encoding label such as "utf-8",
// "utf-16le" or "shift_jis".
func LookupEncoding(name string) (encoding.Encoding, error) {
	if name == "" {
		name = DefaultEncoding
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("unknown encoding %q: %w", name, err)
	}
	return enc, nil
}

// NewLoader Loaderを作成
func NewLoader(fsys fs.FS, encodingName string) (*Loader, error) {
	enc, err := LookupEncoding(encodingName)
	if err != nil {
		return nil, err
	}
	return &Loader{
		fsys:     fsys,
		encoding: enc,
		log:      logger.GetLogger(),
	}, nil
}

// Load は name がディレクトリならその中の全 .vm を、ファイルならそれ1つを読み込む
func (l *Loader) Load(name string) ([]File, bool, error) {
	info, err := fs.Stat(l.fsys, name)
	if errors.Is(err, fs.ErrNotExist) && fileutil.IsSourceFile(name) {
		// 大文字小文字違いのファイル名なら LoadFile が見つける
		if f, loadErr := l.LoadFile(name); loadErr == nil {
			return []File{*f}, false, nil
		}
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to stat %s: %w", name, err)
	}
	if info.IsDir() {
		files, err := l.LoadDir(name)
		return files, true, err
	}
	if !fileutil.IsSourceFile(name) {
		return nil, false, fmt.Errorf("source file %s %w", name, ErrNotSource)
	}
	f, err := l.LoadFile(name)
	if err != nil {
		return nil, false, err
	}
	return []File{*f}, false, nil
}

// LoadDir ディレクトリ直下のすべての.vmファイルを名前順に読み込む
func (l *Loader) LoadDir(dir string) ([]File, error) {
	names, err := l.findSourceFiles(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to find source files: %w", err)
	}

	if len(names) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoSources, dir)
	}

	files := make([]File, 0, len(names))
	for _, name := range names {
		f, err := l.LoadFile(name)
		if err != nil {
			return nil, err
		}
		files = append(files, *f)
	}

	l.log.Debug("Loaded source directory", "dir", dir, "files", len(files))
	return files, nil
}

// findSourceFiles .vmファイルを検出（case-insensitive、サブディレクトリは見ない）
func (l *Loader) findSourceFiles(dir string) ([]string, error) {
	entries, err := fs.ReadDir(l.fsys, dir)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if fileutil.IsSourceFile(entry.Name()) {
			names = append(names, path.Join(dir, entry.Name()))
		}
	}
	sort.Strings(names)
	return names, nil
}

// LoadFile 単一のソースファイルを読み込む。大文字小文字違いの名前も探す
func (l *Loader) LoadFile(name string) (*File, error) {
	data, err := fs.ReadFile(l.fsys, name)
	if errors.Is(err, fs.ErrNotExist) {
		actual, findErr := fileutil.FindFileCaseInsensitiveFS(l.fsys, path.Dir(name), path.Base(name))
		if findErr != nil {
			return nil, fmt.Errorf("failed to read file %s: %w", name, err)
		}
		name = actual
		data, err = fs.ReadFile(l.fsys, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", name, err)
	}

	content, err := Decode(data, l.encoding)
	if err != nil {
		return nil, fmt.Errorf("failed to convert encoding for %s: %w", name, err)
	}

	l.log.Debug("Loaded source file", "path", name, "bytes", len(data))
	return &File{
		Name:    fileutil.StripExt(name),
		Path:    name,
		Content: content,
		Size:    int64(len(data)),
	}, nil
}

// Decode converts data to UTF-8. A UTF-8 or UTF-16 byte order mark wins
// over enc; otherwise enc decodes the bytes.
func Decode(data []byte, enc encoding.Encoding) (string, error) {
	if enc == nil {
		enc = unicode.UTF8
	}
	decoder := unicode.BOMOverride(enc.NewDecoder())
	reader := transform.NewReader(bytes.NewReader(data), decoder)

	utf8Data, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("failed to decode: %w", err)
	}

	return string(utf8Data), nil
}
