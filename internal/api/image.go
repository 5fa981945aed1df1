package api

import (
	"path"
	"strings"
)

const cdnBase = "https://res.cloudinary.com/"

// InferImageMIME maps a filename extension to the MIME type sent for the
// multipart image part. Matching is case-insensitive; unknown extensions
// default to image/jpeg, matching what the backend expects for camera rolls.
func InferImageMIME(filename string) string {
	switch strings.ToLower(path.Ext(filename)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	default:
		return "image/jpeg"
	}
}

// ResolveImageURL turns the image reference stored on a post into a fetchable
// URL. Absolute http(s) URLs pass through unchanged; a relative
// "image/upload/..." path or a bare public id is resolved against the
// Cloudinary base for the configured cloud.
func ResolveImageURL(cloudName, ref string) string {
	if ref == "" {
		return ""
	}
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	return cdnBase + cloudName + "/" + strings.TrimPrefix(ref, "/")
}
