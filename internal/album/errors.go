package album

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrSchema            = errors.New("schema error")
	ErrEmptyAlbum        = errors.New("empty album")
	ErrNotPublished      = errors.New("album not published")
	ErrAlreadyPublished  = errors.New("album already published")
	ErrMissingFullAssets = errors.New("missing full-resolution assets")
	ErrToolInvocation    = errors.New("thumbnail tool failure")
	ErrInvalidName       = errors.New("invalid album name")
	ErrConflict          = errors.New("conflicting files")
	ErrLocked            = errors.New("album tree locked")
)

// Wrap builds an error message that includes the album and operation while tagging it
// with the provided marker. The marker should be one of the exported sentinels above;
// both the marker and err remain reachable through errors.Is.
func Wrap(marker error, folder, operation, message string, err error) error {
	detail := buildDetail(folder, operation, message)
	if marker == nil {
		if err != nil {
			return fmt.Errorf("%s: %w", detail, err)
		}
		return errors.New(detail)
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Hint maps a pipeline error to the next step an operator should take.
func Hint(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrToolInvocation):
		return "install ImageMagick or cwebp and check `photoreel status`"
	case errors.Is(err, ErrEmptyAlbum):
		return "add .jpg, .jpeg, or .png files to the album directory"
	case errors.Is(err, ErrInvalidName):
		return "choose a display name containing letters or digits"
	case errors.Is(err, ErrConflict):
		return "move or rename the conflicting files, then retry"
	case errors.Is(err, ErrMissingFullAssets):
		return "restore the full/ directory from the origin before resetting"
	case errors.Is(err, ErrSchema):
		return "fix or delete the malformed data.json, then run `photoreel manifest regenerate`"
	case errors.Is(err, ErrLocked):
		return "wait for the other photoreel run to finish"
	case errors.Is(err, ErrNotFound):
		return "check the album folder name with `photoreel status`"
	default:
		return "check logs for details"
	}
}

func buildDetail(folder, operation, message string) string {
	parts := make([]string, 0, 3)
	if folder = strings.TrimSpace(folder); folder != "" {
		parts = append(parts, folder)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "album failure"
	}
	return strings.Join(parts, ": ")
}
