package ometiff

import (
	"path/filepath"
	"strings"
)

var tiffSuffixes = []string{".tif", ".tiff", ".tf2", ".tf8", ".btf"}

var omeTiffSuffixes = []string{
	".ome.tif", ".ome.tiff", ".ome.tf2", ".ome.tf8", ".ome.btf",
}

const companionSuffix = ".companion.ome"

// IsTIFF reports whether path's suffix matches one of the bare TIFF
// extensions this module recognizes.
func IsTIFF(path string) bool {
	return hasAnySuffix(path, tiffSuffixes)
}

// IsOMETIFF reports whether path's suffix matches one of the OME-TIFF
// extensions.
func IsOMETIFF(path string) bool {
	return hasAnySuffix(path, omeTiffSuffixes)
}

// IsCompanion reports whether path is a standalone OME-XML companion
// document (the "companion.ome" suffix convention).
func IsCompanion(path string) bool {
	return hasAnySuffix(path, []string{companionSuffix})
}

func hasAnySuffix(path string, suffixes []string) bool {
	lower := strings.ToLower(path)
	for _, s := range suffixes {
		if strings.HasSuffix(lower, s) {
			return true
		}
	}
	return false
}

// canonicalize resolves path to an absolute, cleaned form suitable as a
// file-cache key, matching the teacher's canonicalisation of external
// link targets against a parent directory.
func canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.Clean(abs), nil
}

// resolveRelative resolves a UUID@FileName reference found in one file's
// OME-XML against that file's own directory, the way the teacher
// resolves an external link's target path against its owning file's
// parent.
func resolveRelative(ownerPath, fileName string) (string, error) {
	if filepath.IsAbs(fileName) {
		return canonicalize(fileName)
	}
	return canonicalize(filepath.Join(filepath.Dir(ownerPath), fileName))
}
