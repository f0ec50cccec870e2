package cache

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// Key identifies a cached response.
type Key struct {
	// Endpoint is the API path (e.g. "/api/campaign/list").
	Endpoint string

	// QueryParams of the request. Empty values are kept since the API
	// distinguishes "name=" from an absent name.
	QueryParams url.Values

	// Address is the credential address the response was fetched for.
	// Listings are personalised (hide_completed), so entries never cross accounts.
	Address string
}

// String generates a deterministic key.
// Format: sograph:endpoint:k1=v1:k2=v2:addr=0xabc
//
// Example:
//
//	sograph:api/campaign/list:page=1:pagesize=12:addr=0xabc
func (k Key) String() string {
	parts := []string{"sograph"}

	endpoint := strings.Trim(k.Endpoint, "/")
	if endpoint != "" {
		parts = append(parts, endpoint)
	}

	if len(k.QueryParams) > 0 {
		keys := make([]string, 0, len(k.QueryParams))
		for key := range k.QueryParams {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		for _, key := range keys {
			parts = append(parts, fmt.Sprintf("%s=%s", key, k.QueryParams.Get(key)))
		}
	}

	if k.Address != "" {
		parts = append(parts, "addr="+strings.ToLower(k.Address))
	}

	return strings.Join(parts, ":")
}
