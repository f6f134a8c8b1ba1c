package logs

import (
	"encoding/json"
	"strings"
)

// MatchAlbum reports whether line was logged for the album folder. Console
// lines carry it as "component[folder]:" and JSON lines as an "album" key. An
// empty folder matches everything.
func MatchAlbum(line, folder string) bool {
	if folder == "" {
		return true
	}
	trimmed := strings.TrimSpace(line)
	if strings.HasPrefix(trimmed, "{") {
		var record struct {
			Album string `json:"album"`
		}
		if err := json.Unmarshal([]byte(trimmed), &record); err == nil {
			return record.Album == folder
		}
	}
	return strings.Contains(line, "["+folder+"]:") || strings.Contains(line, " album="+folder)
}

// AlbumFilter returns a Last filter for folder, or nil when folder is empty.
func AlbumFilter(folder string) func(string) bool {
	if folder == "" {
		return nil
	}
	return func(line string) bool { return MatchAlbum(line, folder) }
}
