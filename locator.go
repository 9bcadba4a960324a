package subzip

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"
)

const (
	// Scheme is the only locator scheme accepted by ParseLocator.
	Scheme = "archive"

	// filePrefix is stripped from the front of the locator path before it is decoded.
	filePrefix    = "file:"
	subdirMarker  = "!"
	subdirPrefix  = "!/"
	schemeDivider = ":"
)

// Locator points at a subdirectory inside an archive on the local filesystem, e.g.
// archive:file:/path/to/app.jar!/some/dir/
type Locator struct {
	raw          string
	archivePath  string
	subdirectory string
}

// ParseLocator parses raw into a Locator. The archive path is percent-decoded; the
// subdirectory is kept exactly as written after "!/".
func ParseLocator(raw string) (*Locator, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, &InvalidLocatorError{Locator: raw, Reason: "malformed url", Err: err}
	}

	return parseLocator(raw, u)
}

// LocatorFromURL builds a Locator from an already parsed url.
func LocatorFromURL(u *url.URL) (*Locator, error) {
	return parseLocator(u.String(), u)
}

// FormatLocator returns the locator string for subdirectory inside the archive at archivePath.
func FormatLocator(archivePath, subdirectory string) string {
	var b strings.Builder
	b.WriteString(Scheme)
	b.WriteString(schemeDivider)
	b.WriteString(filePrefix)
	b.WriteString(escapePath(archivePath))
	if subdirectory != "" {
		b.WriteString(subdirPrefix)
		b.WriteString(subdirectory)
	}
	return b.String()
}

func parseLocator(raw string, u *url.URL) (*Locator, error) {
	if u.Scheme != Scheme {
		return nil, &InvalidLocatorError{Locator: raw, Reason: fmt.Sprintf("unsupported scheme %q", u.Scheme)}
	}

	path := u.Opaque
	if path == "" {
		path = u.EscapedPath()
	}
	if len(path) < len(filePrefix) {
		return nil, &InvalidLocatorError{Locator: raw, Reason: "missing archive path"}
	}

	encodedArchivePath, subdirectory := path, ""
	if i := strings.Index(path, subdirMarker); i >= 0 {
		encodedArchivePath = path[:i]
		if i+len(subdirPrefix) <= len(path) {
			subdirectory = path[i+len(subdirPrefix):]
		}
	}
	if len(encodedArchivePath) < len(filePrefix) {
		return nil, &InvalidLocatorError{Locator: raw, Reason: "missing archive path"}
	}

	archivePath, err := url.PathUnescape(encodedArchivePath[len(filePrefix):])
	if err != nil {
		return nil, &InvalidLocatorError{Locator: raw, Reason: "could not decode archive path", Err: err}
	}
	if !utf8.ValidString(archivePath) {
		return nil, &InvalidLocatorError{Locator: raw, Reason: "archive path is not valid UTF-8"}
	}
	if archivePath == "" {
		return nil, &InvalidLocatorError{Locator: raw, Reason: "missing archive path"}
	}

	return &Locator{raw: raw, archivePath: archivePath, subdirectory: subdirectory}, nil
}

// ArchivePath returns the decoded filesystem path of the archive.
func (l *Locator) ArchivePath() string {
	return l.archivePath
}

// Subdirectory returns the entry name prefix used to filter the archive. It is empty when
// the locator has no "!/" segment.
func (l *Locator) Subdirectory() string {
	return l.subdirectory
}

func (l *Locator) String() string {
	return FormatLocator(l.archivePath, l.subdirectory)
}

func escapePath(p string) string {
	segments := strings.Split(p, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}
