package shared

import (
	"path/filepath"
	"regexp"
	"strings"
)

// AlbumSeparator joins directory segments in a canonical album name.
const AlbumSeparator = " / "

var (
	numericPrefix  = regexp.MustCompile(`^[0-9]+_`)
	trailingNumber = regexp.MustCompile(`\s+[0-9]+$`)
	repeatedSlash  = regexp.MustCompile(`/(?: */)+`)
	hashMarker     = regexp.MustCompile(`#[0-9a-fA-F]{32}`)
)

// MapPath derives the canonical album name for path relative to root.
//
// Path segments below root are joined with [AlbumSeparator] and underscores become spaces.
// With stripNumericPrefix set, a leading "<digits>_" ordering prefix is dropped from every segment,
// so "root/02_Vacation/10_Beach" maps to "Vacation / Beach" instead of "02 Vacation / 10 Beach".
func MapPath(path, root string, stripNumericPrefix bool) string {
	path = strings.TrimRight(filepath.ToSlash(path), "/")
	root = strings.TrimRight(filepath.ToSlash(root), "/")

	switch {
	case root == "":
	case path == root:
		path = ""
	case strings.HasPrefix(path, root+"/"):
		path = path[len(root):]
	}

	path = strings.TrimLeft(path, "/")
	if path == "" {
		return ""
	}

	segments := strings.Split(path, "/")
	for i, segment := range segments {
		if stripNumericPrefix {
			segment = numericPrefix.ReplaceAllString(segment, "")
		}
		segments[i] = strings.ReplaceAll(segment, "_", " ")
	}

	return strings.Join(segments, AlbumSeparator)
}

// NormalizePath collapses repeated separators, including ones padded with spaces ("a/ /b").
func NormalizePath(path string) string {
	return repeatedSlash.ReplaceAllString(filepath.ToSlash(path), "/")
}

// AssetTitle returns the remote title for a local file: the name without extension, underscores as spaces.
func AssetTitle(filename string) string {
	base := filepath.Base(filename)
	title := strings.TrimSuffix(base, filepath.Ext(base))
	return strings.ReplaceAll(title, "_", " ")
}

// AssetTags drops a trailing counter so "Beach 2" and "Beach 3" share the tag "Beach".
func AssetTags(title string) string {
	return trailingNumber.ReplaceAllString(title, "")
}

// HashTag is the description marker identifying an uploaded file by content.
func HashTag(hash string) string {
	return "#" + hash
}

// HashTags returns every content hash marker found in an asset description.
//
// A marker counts wherever it appears, also when text follows it directly ("#<md5>_edited").
func HashTags(description string) []string {
	return hashMarker.FindAllString(description, -1)
}

// HasExtension reports whether name ends in one of exts, ignoring case.
func HasExtension(name string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return false
	}
	for _, candidate := range exts {
		if !strings.HasPrefix(candidate, ".") {
			candidate = "." + candidate
		}
		if strings.ToLower(candidate) == ext {
			return true
		}
	}
	return false
}
