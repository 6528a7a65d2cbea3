package asset

import (
	"mime"
	"strings"
)

// ValidateSize reports whether size bytes fit within maxMB mebibytes.
// A file of exactly maxMB<<20 bytes passes.
func ValidateSize(size int64, maxMB int) bool {
	return size <= int64(maxMB)<<20
}

// ValidateType reports whether contentType is allowed by any entry of allowed.
// Entries are exact MIME types or "<major>/*" wildcards. An empty list allows nothing.
func ValidateType(contentType string, allowed []string) bool {
	ct := normalizeMediaType(contentType)
	major, minor, ok := strings.Cut(ct, "/")
	if !ok || major == "" || minor == "" {
		return false
	}

	for _, entry := range allowed {
		entry = strings.ToLower(strings.TrimSpace(entry))
		if entry == "*/*" {
			return true
		}
		if wildMajor, ok := strings.CutSuffix(entry, "/*"); ok {
			if wildMajor == major {
				return true
			}
			continue
		}
		if entry == ct {
			return true
		}
	}
	return false
}

func normalizeMediaType(contentType string) string {
	if mt, _, err := mime.ParseMediaType(contentType); err == nil {
		return mt
	}
	return strings.ToLower(strings.TrimSpace(contentType))
}

// describeTypes renders allowed types for a rejection message, e.g. "image, application/pdf".
func describeTypes(allowed []string) string {
	parts := make([]string, 0, len(allowed))
	for _, t := range allowed {
		parts = append(parts, strings.TrimSuffix(t, "/*"))
	}
	return strings.Join(parts, ", ")
}
