package urlutil

import (
	"fmt"
	"strings"
)

const uploadSegment = "/upload/"

// AvatarThumbnailURL derives a square, face-cropped thumbnail from an image CDN
// delivery URL by inserting a transformation after the /upload/ segment.
//
// Parameters:
//   - secureURL: the URL returned by the upload endpoint
//   - size: desired width and height in pixels
//
// Returns the URL unchanged if it is not a CDN delivery URL.
func AvatarThumbnailURL(secureURL string, size int) string {
	i := strings.Index(secureURL, uploadSegment)
	if i < 0 || size <= 0 {
		return secureURL
	}
	transform := fmt.Sprintf("c_thumb,g_face,w_%d,h_%d", size, size)
	return secureURL[:i+len(uploadSegment)] + transform + "/" + secureURL[i+len(uploadSegment):]
}

// ImageUploadURL builds the unsigned upload endpoint for a CDN cloud.
// Returns a URL like: {baseURL}/v1_1/{cloudName}/image/upload
func ImageUploadURL(baseURL, cloudName string) string {
	return fmt.Sprintf("%s/v1_1/%s/image/upload", strings.TrimRight(baseURL, "/"), cloudName)
}
