package album

import (
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// On-disk layout of a published album.
const (
	MetadataFile = "data.json"
	LowDir       = "low"
	FullDir      = "full"
	WebExtension = "webp"
)

// Album is one published photo set.
type Album struct {
	// FolderName is the album directory name. It is derived from the directory,
	// never stored inside the metadata file.
	FolderName   string
	Name         string
	Photographer string
	CreatedAt    time.Time
	CoverPhoto   string
	Photos       []Photo
}

// Photo is one image of an album. A published photo has a low-resolution WebP
// named WebName and an archival copy named BaseName.OriginalExtension.
type Photo struct {
	BaseName          string
	WebName           string
	OriginalExtension string
}

// NewPhoto builds the photo record for the 1-based index within folder.
func NewPhoto(folder string, index int, ext string) Photo {
	base := PhotoBaseName(folder, index)
	return Photo{
		BaseName:          base,
		WebName:           base + "." + WebExtension,
		OriginalExtension: strings.ToLower(strings.TrimPrefix(ext, ".")),
	}
}

// PhotoBaseName returns "{folder}_{index}".
func PhotoBaseName(folder string, index int) string {
	return folder + "_" + strconv.Itoa(index)
}

// FullName is the archival asset filename.
func (p Photo) FullName() string {
	if p.OriginalExtension == "" {
		return p.BaseName
	}
	return p.BaseName + "." + p.OriginalExtension
}

// HasPhoto reports whether webName names one of the album photos.
func (a Album) HasPhoto(webName string) bool {
	for _, p := range a.Photos {
		if p.WebName == webName {
			return true
		}
	}
	return false
}

// Cover returns the cover photo record, falling back to the first photo.
func (a Album) Cover() (Photo, bool) {
	for _, p := range a.Photos {
		if p.WebName == a.CoverPhoto {
			return p, true
		}
	}
	if len(a.Photos) > 0 {
		return a.Photos[0], true
	}
	return Photo{}, false
}

var sourceExtensions = map[string]struct{}{
	"jpg":  {},
	"jpeg": {},
	"png":  {},
}

// IsSourceImage reports whether name has a raw source extension (jpg, jpeg, png),
// compared case-insensitively.
func IsSourceImage(name string) bool {
	_, ok := sourceExtensions[Extension(name)]
	return ok
}

// Extension returns the lowercase extension of name without the leading dot.
func Extension(name string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
}

// State classifies an album directory.
type State string

const (
	StateRaw       State = "raw"
	StatePublished State = "published"
	StateEmpty     State = "empty"
	StateCorrupt   State = "corrupt"
)

// Status is the scanned state of one album directory.
type Status struct {
	FolderName string
	State      State
	Sources    int
	Photos     int
	// Resumable marks a directory left behind by an interrupted publish.
	Resumable bool
	Detail    string
}
