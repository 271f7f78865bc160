package openstack

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSignTemporaryURLIsBitExact(t *testing.T) {
	// HMAC-SHA1 of "GET\n1000\n/v1/AUTH_x/container/obj" keyed by "k".
	signed, err := SignTemporaryURL("http://host/v1/AUTH_x/container/obj", time.Unix(1000, 0), "k")
	require.NoError(t, err)
	require.Equal(t,
		"http://host/v1/AUTH_x/container/obj?temp_url_sig=34caf2ac3b5d2424fc2ebafd1e7e7302fa9871f5&temp_url_expires=1000",
		signed)
}

func TestSignTemporaryURLDeterministic(t *testing.T) {
	expires := time.Unix(1700000600, 0)
	url := "https://swift.example.com/v1/AUTH_abc/backups/2026/db.tar.gz"

	first, err := SignTemporaryURL(url, expires, "secret")
	require.NoError(t, err)
	second, err := SignTemporaryURL(url, expires, "secret")
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Contains(t, first, "temp_url_sig=e4d147f15a9ad148e813d48c863977790ab1fb8e")
	require.Contains(t, first, "temp_url_expires=1700000600")
}

func TestSignTemporaryURLRejectsPathlessURL(t *testing.T) {
	_, err := SignTemporaryURL("http://host", time.Unix(1000, 0), "k")
	require.Error(t, err)
}

func TestSignTemporaryURLKeySensitivity(t *testing.T) {
	expires := time.Unix(1000, 0)
	a, err := SignTemporaryURL("http://host/v1/AUTH_x/container/obj", expires, "k")
	require.NoError(t, err)
	b, err := SignTemporaryURL("http://host/v1/AUTH_x/container/obj", expires, "other")
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}
