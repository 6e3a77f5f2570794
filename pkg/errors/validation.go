package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// guidPattern matches dataset identifiers: a leading letter or digit
// followed by letters, digits, dash, or underscore. Everything else,
// including path separators, traversal sequences, and control
// characters, fails the match.
var guidPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*$`)

const (
	maxGUIDLength = 256
	maxPathLength = 500
)

// ValidateGUID checks a dataset identifier before it is embedded in a
// request URL or used as a storage key. The accepted character set is
// deliberately narrow so an identifier can never smuggle URL syntax,
// whatever the server would tolerate.
func ValidateGUID(guid string) error {
	switch {
	case guid == "":
		return New(ErrCodeInvalidGUID, "guid cannot be empty")
	case len(guid) > maxGUIDLength:
		return New(ErrCodeInvalidGUID, "guid too long (max %d characters)", maxGUIDLength)
	case !guidPattern.MatchString(guid):
		return New(ErrCodeInvalidGUID, "invalid guid: %q", guid)
	}
	return nil
}

// ValidateDimension checks a slicing axis index against the cube rank.
// Volumetric cubes are three-dimensional, so valid dimensions are 0, 1, 2.
func ValidateDimension(dim int) error {
	if dim < 0 || dim > 2 {
		return New(ErrCodeInvalidDimension, "dimension must be 0, 1, or 2 (got %d)", dim)
	}
	return nil
}

// ValidateLineno checks a line number used to pin the slicing axis.
// Line numbers are non-negative labels from the cube manifest.
func ValidateLineno(lineno int) error {
	if lineno < 0 {
		return New(ErrCodeInvalidLineno, "lineno cannot be negative (got %d)", lineno)
	}
	return nil
}

// ValidateShape checks target slice dimensions. Both extents must be
// positive and their product must stay addressable, since it sizes the
// destination buffer.
func ValidateShape(shape0, shape1 int) error {
	if shape0 <= 0 {
		return New(ErrCodeInvalidShape, "shape0 must be positive (got %d)", shape0)
	}
	if shape1 <= 0 {
		return New(ErrCodeInvalidShape, "shape1 must be positive (got %d)", shape1)
	}
	if shape0 > (1<<31-1)/shape1 {
		return New(ErrCodeInvalidShape, "shape %dx%d too large", shape0, shape1)
	}
	return nil
}

// ValidateURL checks that a server URL is non-empty and speaks http or
// https. Full parsing is left to the HTTP client.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}
	return nil
}

// ValidateOutputPath checks a file path before an artifact is written to
// it. Unlike identifiers, paths keep their separators; only length,
// control characters, and null bytes are rejected.
func ValidateOutputPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "output path cannot be empty")
	}
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "output path too long (max %d characters)", maxPathLength)
	}
	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "output path contains control characters")
		}
	}
	return nil
}
