package mapper

import (
	"mime"
	"net/url"
	"path"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/lysyi3m/wiki-api-connector/app/unit"
)

const (
	UnknownTitle      = "Unknown"
	FilenameExtension = ".jpg"
)

var sanitizer = strings.NewReplacer(
	"#", "___",
	"<", "(",
	">", ")",
	"[", "(",
	"]", ")",
	"|", "___",
	":", "___",
	"{", "(",
	"}", ")",
	"/", "___",
	".", "_",
)

var tildes = regexp.MustCompile(`~+`)

// imageExtensions are stripped from base filenames even where the system
// MIME table does not know them.
var imageExtensions = []string{".jpg", ".jpeg", ".jp2", ".png", ".gif", ".tif", ".tiff", ".webp", ".bmp"}

// Sanitize makes s safe for use in a Commons filename: characters Commons
// forbids are replaced, runs of "~" collapse to "_" and leading "_" are
// stripped.
func Sanitize(s string) string {
	s = strings.TrimSpace(norm.NFC.String(s))
	s = sanitizer.Replace(s)
	s = tildes.ReplaceAllString(s, "_")
	return strings.TrimLeft(s, "_")
}

// BaseFilename returns the name of the source image without its image
// extension: the "id" query parameter when present, otherwise the last path
// segment. Other dotted suffixes, as in accession numbers, are kept.
func BaseFilename(imageURL string) string {
	u, err := url.Parse(imageURL)
	if err != nil {
		return ""
	}

	name := u.Query().Get("id")
	if name == "" {
		name = path.Base(u.Path)
		if name == "/" || name == "." {
			return ""
		}
	}
	if ext := path.Ext(name); isImageExtension(ext) {
		name = strings.TrimSuffix(name, ext)
	}
	return name
}

func isImageExtension(ext string) bool {
	if ext == "" {
		return false
	}
	ext = strings.ToLower(ext)
	return slices.Contains(imageExtensions, ext) || strings.HasPrefix(mime.TypeByExtension(ext), "image/")
}

// BuildFilename joins the sanitized tokens in order with spaces and appends
// the extension. Empty tokens are left out.
func BuildFilename(order []unit.Token, title, identifier, baseFilename string) string {
	values := map[unit.Token]string{
		unit.TokenTitle:        title,
		unit.TokenIdentifier:   identifier,
		unit.TokenBaseFilename: baseFilename,
	}

	parts := make([]string, 0, len(order))
	for _, token := range order {
		if s := Sanitize(values[token]); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ") + FilenameExtension
}

// uniqueName returns name, or name with a numeric suffix before the extension
// when it was already handed out.
func uniqueName(seen map[string]bool, name string) string {
	candidate := name
	stem := strings.TrimSuffix(name, FilenameExtension)
	for n := 2; seen[candidate]; n++ {
		candidate = stem + " " + strconv.Itoa(n) + FilenameExtension
	}
	seen[candidate] = true
	return candidate
}
