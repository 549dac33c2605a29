package httpapi

import "strings"

func normalizeBasePath(value string) string {
	path := strings.TrimSpace(value)
	if path == "" || path == "/" {
		return ""
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	path = strings.TrimRight(path, "/")
	if path == "/" {
		return ""
	}
	return path
}

// baseHref is the <base> target that keeps relative asset and API URLs
// inside the mount point.
func baseHref(basePath string) string {
	path := normalizeBasePath(basePath)
	if path == "" {
		return ""
	}
	return path + "/"
}

// sessionIDFromPath extracts the id from /api/session/{id}/... paths.
func sessionIDFromPath(path string) string {
	rest, ok := strings.CutPrefix(path, "/api/session/")
	if !ok {
		return ""
	}
	id, _, _ := strings.Cut(rest, "/")
	return id
}
