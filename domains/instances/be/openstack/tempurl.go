package openstack

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"net/url"
	"time"
)

// SignTemporaryURL produces a time-limited signed URL for one object. The
// canonical string is "GET\n{expiresEpochSeconds}\n{urlPath}" keyed with the
// account's temp-URL meta key; the backend recomputes the identical
// signature to authorize the request, so the format must not drift. SHA-1 is
// what the backend's temp URL middleware expects.
func SignTemporaryURL(publicURL string, expires time.Time, metaKey string) (string, error) {
	u, err := url.Parse(publicURL)
	if err != nil {
		return "", fmt.Errorf("parse public url: %w", err)
	}
	if u.Path == "" {
		return "", fmt.Errorf("public url %q has no object path", publicURL)
	}

	epoch := expires.Unix()
	canonical := fmt.Sprintf("GET\n%d\n%s", epoch, u.EscapedPath())

	mac := hmac.New(sha1.New, []byte(metaKey))
	mac.Write([]byte(canonical))
	signature := hex.EncodeToString(mac.Sum(nil))

	return fmt.Sprintf("%s?temp_url_sig=%s&temp_url_expires=%d", publicURL, signature, epoch), nil
}
