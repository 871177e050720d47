package transcode

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/dhowden/tag"
)

// readFileTags returns ffmpeg metadata keys for the tags found in path. Files
// without a readable tag block yield an empty map.
func readFileTags(path string) (map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	metadata, err := tag.ReadFrom(file)
	if err != nil || metadata == nil {
		return map[string]string{}, nil
	}

	tags := make(map[string]string)
	set := func(key, value string) {
		if value = strings.TrimSpace(value); value != "" {
			tags[key] = value
		}
	}
	set("title", metadata.Title())
	set("artist", metadata.Artist())
	set("album", metadata.Album())
	set("album_artist", metadata.AlbumArtist())
	set("composer", metadata.Composer())
	set("genre", metadata.Genre())
	if year := metadata.Year(); year > 0 {
		tags["date"] = strconv.Itoa(year)
	}
	if number, total := metadata.Track(); number > 0 {
		tags["track"] = formatPosition(number, total)
	}
	if number, total := metadata.Disc(); number > 0 {
		tags["disc"] = formatPosition(number, total)
	}
	return tags, nil
}

func formatPosition(number, total int) string {
	if total > 0 {
		return fmt.Sprintf("%d/%d", number, total)
	}
	return strconv.Itoa(number)
}
