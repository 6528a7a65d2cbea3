package asset

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// test seams
var (
	now         = time.Now
	randomToken = func() string {
		id := uuid.New()
		return strings.ReplaceAll(id.String(), "-", "")[:10]
	}
)

// GenerateKey derives a storage key from an uploaded file name:
// "<sanitized-base>_<unix-millis>_<random>.<ext>".
// Characters of the base outside [A-Za-z0-9] become "_". The extension is the last
// dot-separated segment and is omitted, together with its dot, when the name has none.
// Uniqueness relies solely on the random token; the store is never consulted.
func GenerateKey(originalName string) string {
	base, ext := splitExt(originalName)

	var b strings.Builder
	b.WriteString(sanitize(base))
	b.WriteByte('_')
	b.WriteString(strconv.FormatInt(now().UnixMilli(), 10))
	b.WriteByte('_')
	b.WriteString(randomToken())
	if ext != "" {
		b.WriteByte('.')
		b.WriteString(ext)
	}
	return b.String()
}

func splitExt(name string) (base, ext string) {
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return name, ""
	}
	return name[:i], name[i+1:]
}

func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, s)
}
