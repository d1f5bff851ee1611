package crawl

import (
	"net/url"
	"path"
	"strings"
)

var staticExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".svg": true, ".webp": true, ".ico": true, ".bmp": true,
	".css": true, ".js": true, ".mjs": true, ".json": true, ".xml": true,
	".woff": true, ".woff2": true, ".ttf": true, ".eot": true,
	".mp4": true, ".webm": true, ".mp3": true, ".wav": true,
	".zip": true, ".tar": true, ".gz": true,
	".pdf": true, ".doc": true, ".docx": true, ".xls": true, ".xlsx": true,
}

// IsWebScheme reports whether u is http or https.
func IsWebScheme(u *url.URL) bool {
	s := strings.ToLower(u.Scheme)
	return s == "http" || s == "https"
}

// Crawlable reports whether rawURL is an http(s) page on host.
func Crawlable(rawURL, host string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil || !IsWebScheme(parsed) {
		return false
	}
	return strings.EqualFold(parsed.Host, host) && !IsStaticAsset(rawURL)
}

// IsStaticAsset checks if a URL points to an image, stylesheet, script,
// font, media file, archive or office document.
func IsStaticAsset(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return staticExtensions[strings.ToLower(path.Ext(parsed.Path))]
}

// NormalizeURL strips the fragment and any trailing slash (except the root).
func NormalizeURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	parsed.Fragment = ""
	if parsed.Path != "/" {
		parsed.Path = strings.TrimSuffix(parsed.Path, "/")
	}
	return parsed.String()
}
