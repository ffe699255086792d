package storage

import "net/url"

// FaviconURL derives an icon URL for a site through the Google favicon
// service. It returns "" when no domain can be extracted.
func FaviconURL(baseURL string) string {
	if baseURL == "" {
		return ""
	}

	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Host == "" {
		return ""
	}

	return "https://www.google.com/s2/favicons?domain=" + parsed.Host
}
