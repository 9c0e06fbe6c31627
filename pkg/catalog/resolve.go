package catalog

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// pathSanitizer replaces the characters that are unsafe in artifact
// filenames. The substitution set and the `#` replacement are part of
// the on-disk naming contract with the download side, so they must not
// change.
var pathSanitizer = strings.NewReplacer(
	"?", "#",
	"/", "#",
	"\\", "#",
	"<", "#",
	">", "#",
	`"`, "#",
	"|", "#",
	"*", "#",
	":", "#",
)

// SanitizeForPath maps a catalog field onto its filesystem-safe form.
// Input is NFC-normalized first so composed and decomposed spellings
// of the same name resolve to the same artifact.
func SanitizeForPath(s string) string {
	return pathSanitizer.Replace(norm.NFC.String(s))
}

// DefaultExtensions are the artifact formats probed by the resolver,
// in preference order.
var DefaultExtensions = []string{".mp3", ".wav"}

// Resolver locates audio artifacts for catalog rows under a year-keyed
// directory tree: <root>/<year>/<country>_<song>_<performer>.<ext>.
type Resolver struct {
	root       string
	extensions []string
}

// NewResolver creates a resolver rooted at the artifact directory. A
// nil extension list means DefaultExtensions.
func NewResolver(root string, extensions []string) *Resolver {
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	return &Resolver{
		root:       root,
		extensions: extensions,
	}
}

// Resolve returns the artifact path for a row, or ok=false when no
// candidate exists. A missing artifact is the expected common case,
// not an error.
func (r *Resolver) Resolve(row Row) (string, bool) {
	base := r.baseName(row)

	for _, ext := range r.extensions {
		candidate := filepath.Join(r.root, yearDir(row.Year()), base+ext)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
	}
	return "", false
}

// CandidatePath returns the first path the resolver probes for a row,
// whether or not anything exists there. Used when reporting rows whose
// artifact was never found.
func (r *Resolver) CandidatePath(row Row) string {
	return filepath.Join(r.root, yearDir(row.Year()), r.baseName(row)+r.extensions[0])
}

// baseName derives the artifact's file stem from the row's country,
// song and performer, each sanitized with the same substitution
// policy.
func (r *Resolver) baseName(row Row) string {
	return SanitizeForPath(row.Country()) +
		"_" + SanitizeForPath(row.Song()) +
		"_" + SanitizeForPath(row.Performer())
}

// BundlePath returns the persisted bundle document path for an
// artifact: the same path with a .json extension.
func BundlePath(artifactPath string) string {
	ext := filepath.Ext(artifactPath)
	return strings.TrimSuffix(artifactPath, ext) + ".json"
}

// yearDir normalizes the year field to an integer directory name.
// Catalog exports sometimes carry years as floats ("1956.0").
func yearDir(year string) string {
	year = strings.TrimSpace(year)
	if _, err := strconv.Atoi(year); err == nil {
		return year
	}
	if f, err := strconv.ParseFloat(year, 64); err == nil {
		return strconv.Itoa(int(f))
	}
	return year
}
