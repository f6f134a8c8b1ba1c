package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"photoreel/internal/album"
)

// DateLayout is the ISO-8601 UTC layout written to data.json, matching
// JavaScript's Date.prototype.toISOString.
const DateLayout = "2006-01-02T15:04:05.000Z07:00"

type globalDocument struct {
	Albums []string `json:"albums"`
}

type albumDocument struct {
	Name         string        `json:"name"`
	Photographer string        `json:"photographer"`
	Date         string        `json:"date"`
	CoverPhoto   string        `json:"coverPhoto"`
	Photos       []photoRecord `json:"photos"`
}

// photoRecord is either a legacy bare filename string or {"webp", "ext"}.
type photoRecord struct {
	WebP string `json:"webp"`
	Ext  string `json:"ext"`

	legacy string
}

func (r *photoRecord) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return err
		}
		*r = photoRecord{legacy: name}
		return nil
	}
	type plain photoRecord
	var decoded plain
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*r = photoRecord(decoded)
	return nil
}

func (r photoRecord) photo() (album.Photo, error) {
	if r.legacy != "" || (r.WebP == "" && r.Ext == "") {
		name := strings.TrimSpace(r.legacy)
		if name == "" {
			return album.Photo{}, errors.New("photo entry has no filename")
		}
		return legacyPhoto(name), nil
	}
	webName := strings.TrimSpace(r.WebP)
	ext := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(r.Ext), "."))
	if webName == "" {
		return album.Photo{}, errors.New("photo entry missing webp name")
	}
	if ext == "" {
		return album.Photo{}, fmt.Errorf("photo %q missing ext", webName)
	}
	return album.Photo{
		BaseName:          strings.TrimSuffix(webName, "."+album.WebExtension),
		WebName:           webName,
		OriginalExtension: ext,
	}, nil
}

// legacyPhoto maps a bare filename to a Photo whose low and full assets share
// that filename, so both URLs derive from it without extension remapping.
func legacyPhoto(name string) album.Photo {
	ext := album.Extension(name)
	base := name
	if ext != "" {
		base = name[:len(name)-len(ext)-1]
	}
	return album.Photo{BaseName: base, WebName: name, OriginalExtension: ext}
}

// DecodeGlobalManifest parses albums.json into a sorted, de-duplicated folder list.
func DecodeGlobalManifest(data []byte) ([]string, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, album.Wrap(album.ErrSchema, "", "decode global manifest", "invalid JSON", err)
	}
	albumsRaw, ok := raw["albums"]
	if !ok {
		return nil, album.Wrap(album.ErrSchema, "", "decode global manifest", "missing albums field", nil)
	}
	var folders []string
	if err := json.Unmarshal(albumsRaw, &folders); err != nil {
		return nil, album.Wrap(album.ErrSchema, "", "decode global manifest", "albums must be a list of folder names", err)
	}
	return normalizeFolders(folders), nil
}

// EncodeGlobalManifest renders folders as albums.json, sorted and de-duplicated so
// rebuilding from the same filesystem yields identical bytes.
func EncodeGlobalManifest(folders []string) ([]byte, error) {
	doc := globalDocument{Albums: normalizeFolders(folders)}
	return marshal(doc)
}

func normalizeFolders(folders []string) []string {
	out := make([]string, 0, len(folders))
	for _, folder := range folders {
		if folder = strings.TrimSpace(folder); folder != "" {
			out = append(out, folder)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// DecodeAlbum parses a data.json document. The returned album has no FolderName;
// callers set it from the directory or URL the document came from.
func DecodeAlbum(data []byte) (album.Album, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return album.Album{}, album.Wrap(album.ErrSchema, "", "decode album", "invalid JSON", err)
	}
	for _, field := range []string{"name", "photographer", "date", "coverPhoto", "photos"} {
		if _, ok := raw[field]; !ok {
			return album.Album{}, album.Wrap(album.ErrSchema, "", "decode album", "missing "+field+" field", nil)
		}
	}

	var doc albumDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return album.Album{}, album.Wrap(album.ErrSchema, "", "decode album", "malformed field", err)
	}

	created, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(doc.Date))
	if err != nil {
		return album.Album{}, album.Wrap(album.ErrSchema, "", "decode album", "date is not ISO-8601", err)
	}

	photos := make([]album.Photo, 0, len(doc.Photos))
	for i, record := range doc.Photos {
		photo, err := record.photo()
		if err != nil {
			return album.Album{}, album.Wrap(album.ErrSchema, "", "decode album", fmt.Sprintf("photos[%d]", i), err)
		}
		photos = append(photos, photo)
	}

	decoded := album.Album{
		Name:         doc.Name,
		Photographer: doc.Photographer,
		CreatedAt:    created.UTC(),
		CoverPhoto:   strings.TrimSpace(doc.CoverPhoto),
		Photos:       photos,
	}
	if err := Validate(decoded); err != nil {
		return album.Album{}, err
	}
	return decoded, nil
}

// EncodeAlbum renders a validated album as data.json using the structured photo form.
func EncodeAlbum(a album.Album) ([]byte, error) {
	if err := Validate(a); err != nil {
		return nil, err
	}
	doc := albumDocument{
		Name:         a.Name,
		Photographer: a.Photographer,
		Date:         a.CreatedAt.UTC().Format(DateLayout),
		CoverPhoto:   a.CoverPhoto,
		Photos:       make([]photoRecord, 0, len(a.Photos)),
	}
	for _, p := range a.Photos {
		doc.Photos = append(doc.Photos, photoRecord{WebP: p.WebName, Ext: p.OriginalExtension})
	}
	return marshal(doc)
}

// Validate enforces the album metadata schema.
func Validate(a album.Album) error {
	folder := a.FolderName
	if strings.TrimSpace(a.Name) == "" {
		return album.Wrap(album.ErrSchema, folder, "validate", "name is empty", nil)
	}
	if a.CreatedAt.IsZero() {
		return album.Wrap(album.ErrSchema, folder, "validate", "date is missing", nil)
	}
	if len(a.Photos) == 0 {
		return album.Wrap(album.ErrSchema, folder, "validate", "photos is empty", nil)
	}
	seen := make(map[string]struct{}, len(a.Photos))
	for i, p := range a.Photos {
		if p.WebName == "" || p.BaseName == "" {
			return album.Wrap(album.ErrSchema, folder, "validate", fmt.Sprintf("photos[%d] has no name", i), nil)
		}
		if _, dup := seen[p.WebName]; dup {
			return album.Wrap(album.ErrSchema, folder, "validate", fmt.Sprintf("photos[%d] duplicates %s", i, p.WebName), nil)
		}
		seen[p.WebName] = struct{}{}
	}
	if !a.HasPhoto(a.CoverPhoto) {
		return album.Wrap(album.ErrSchema, folder, "validate", fmt.Sprintf("coverPhoto %q matches no photo", a.CoverPhoto), nil)
	}
	return nil
}

func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
