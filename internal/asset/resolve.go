package asset

import (
	"net/url"
	"strings"

	"github.com/bugrarslan/mirza-admin/internal/storage"
)

// ResolveKey recovers the storage key of bucket from a public URL issued by Upload.
// It is the inverse of storage.PublicURL and relies only on the URL's path shape
// (".../storage/v1/object/public/<bucket>/<key>"). It reports false for malformed URLs,
// URLs of another bucket, and URLs without a key; callers treat that as "no object".
//
// If the store ever changes its public URL convention, previously stored URLs stop
// resolving and their objects are no longer cleaned up.
func ResolveKey(rawURL string, bucket Bucket) (string, bool) {
	if rawURL == "" || bucket == "" {
		return "", false
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", false
	}
	_, key, found := strings.Cut(u.Path, storage.PublicPathMarker(string(bucket)))
	if !found || key == "" {
		return "", false
	}
	return key, true
}
