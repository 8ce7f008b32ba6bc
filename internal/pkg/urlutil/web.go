package urlutil

import (
	"net/url"
	"strings"
)

// BuildAPIURL joins an API base URL and an already escaped path and attaches
// query parameters. Returns a URL like: {baseURL}/api/v1/jobs?q=go
func BuildAPIURL(baseURL, path string, query url.Values) (string, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return "", err
	}
	u = u.JoinPath(path)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String(), nil
}
