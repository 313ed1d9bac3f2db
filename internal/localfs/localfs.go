// package localfs lists and hashes the local photo tree.
//
// Listings skip hidden entries (names starting with ".") and anything matched by the configured
// gitignore-style patterns. Files are further limited to the configured image extensions.
package localfs

import (
	"crypto/md5"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"
	"github.com/spf13/afero"

	"github.com/desertthunder/albumsync/internal/shared"
)

var defaultIgnoreLines = []string{
	".git/",
	".DS_Store",
	"Thumbs.db",
	"@eaDir/",
}

// Listing is one directory of the local tree.
//
// Files and Directories hold full paths sorted by name.
type Listing struct {
	Path        string
	Files       []string
	Directories []string
}

// Filesystem is the local tree as seen by the sync engine.
type Filesystem interface {
	// ListEntries lists path; failures wrap [shared.ErrTraversal].
	ListEntries(path string) (*Listing, error)

	// ContentHash returns the hex MD5 digest of the file at path.
	ContentHash(path string) (string, error)

	// Open opens the file at path for reading.
	Open(path string) (io.ReadCloser, error)

	// Stat describes the entry at path.
	Stat(path string) (fs.FileInfo, error)
}

// Options configures a [Library].
type Options struct {
	Root       string
	Extensions []string
	Ignore     []string
}

// Library implements [Filesystem] over an [afero.Fs].
type Library struct {
	fs         afero.Fs
	root       string
	extensions []string
	ignore     *gitignore.GitIgnore
}

// NewLibrary creates a Library reading from fsys.
func NewLibrary(fsys afero.Fs, opts Options) *Library {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}

	lines := append(append([]string{}, defaultIgnoreLines...), opts.Ignore...)

	// Listings hand out absolute paths, so anchored patterns need an absolute root to match against.
	root := opts.Root
	if root != "" {
		if abs, err := filepath.Abs(root); err == nil {
			root = abs
		}
	}

	return &Library{
		fs:         fsys,
		root:       filepath.Clean(root),
		extensions: opts.Extensions,
		ignore:     gitignore.CompileIgnoreLines(lines...),
	}
}

// ListEntries reads path and splits it into image files and subdirectories.
func (l *Library) ListEntries(path string) (*Listing, error) {
	infos, err := afero.ReadDir(l.fs, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", shared.ErrTraversal, path, err)
	}

	listing := &Listing{Path: path}
	for _, info := range infos {
		name := info.Name()
		full := filepath.Join(path, name)

		if strings.HasPrefix(name, ".") || l.ignored(full, info.IsDir()) {
			continue
		}

		switch {
		case info.IsDir():
			listing.Directories = append(listing.Directories, full)
		case info.Mode().IsRegular() && shared.HasExtension(name, l.extensions):
			listing.Files = append(listing.Files, full)
		}
	}

	return listing, nil
}

// ContentHash returns the MD5 of the file's bytes as 32 lowercase hex characters.
func (l *Library) ContentHash(path string) (string, error) {
	file, err := l.fs.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hash := md5.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}

	return fmt.Sprintf("%x", hash.Sum(nil)), nil
}

func (l *Library) Open(path string) (io.ReadCloser, error) {
	return l.fs.Open(path)
}

func (l *Library) Stat(path string) (fs.FileInfo, error) {
	return l.fs.Stat(path)
}

// ignored matches path, relative to the library root when possible, against the ignore patterns.
func (l *Library) ignored(path string, dir bool) bool {
	rel := path
	if l.root != "" && l.root != "." {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
		if r, err := filepath.Rel(l.root, path); err == nil && !strings.HasPrefix(r, "..") {
			rel = r
		}
	}

	rel = filepath.ToSlash(rel)
	if dir {
		rel += "/"
	}
	return l.ignore.MatchesPath(rel)
}

var _ Filesystem = (*Library)(nil)
