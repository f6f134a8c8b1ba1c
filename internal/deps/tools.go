package deps

import "strings"

// ThumbnailRequirement describes the configured WebP thumbnail encoder.
func ThumbnailRequirement(tool string) Requirement {
	tool = strings.TrimSpace(tool)
	desc := "Required to render WebP thumbnails"
	switch tool {
	case "magick":
		desc = "ImageMagick 7; required to render WebP thumbnails"
	case "convert":
		desc = "ImageMagick 6; required to render WebP thumbnails"
	case "cwebp":
		desc = "libwebp encoder; required to render WebP thumbnails"
	}
	return Requirement{Name: "Thumbnail tool", Command: tool, Description: desc}
}

// MissingRequired returns the unavailable non-optional dependencies.
func MissingRequired(statuses []Status) []Status {
	var missing []Status
	for _, status := range statuses {
		if !status.Optional && !status.Available {
			missing = append(missing, status)
		}
	}
	return missing
}
