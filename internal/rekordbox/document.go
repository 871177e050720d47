package rekordbox

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"

	"mixport/internal/track"
)

const (
	documentVersion = "1.0.0"
	productName     = "mixport"
	productCompany  = "mixport"

	nodeFolder   = "0"
	nodePlaylist = "1"
	// Playlist entries reference tracks by TrackID.
	keyTypeTrackID = "0"
	markCue        = "0"
)

// Document accumulates collections for a single XML export. It is not safe
// for concurrent use.
type Document struct {
	version string
	tracks  []trackElement
	seen    map[string]struct{}
	nodes   []nodeElement
}

// NewDocument returns an empty document. version is written to the PRODUCT
// element.
func NewDocument(version string) *Document {
	if version == "" {
		version = "dev"
	}
	return &Document{version: version, seen: make(map[string]struct{})}
}

// AddCollection appends a playlist named name holding tracks in order.
// Tracks already added by an earlier collection are referenced, not
// duplicated.
func (d *Document) AddCollection(name string, tracks []*track.ExportedTrack) {
	entries := make([]playlistTrack, 0, len(tracks))
	for _, t := range tracks {
		if t == nil {
			continue
		}
		if _, ok := d.seen[t.ID()]; !ok {
			d.seen[t.ID()] = struct{}{}
			d.tracks = append(d.tracks, newTrackElement(t))
		}
		entries = append(entries, playlistTrack{Key: t.ID()})
	}
	count := len(entries)
	keyType := keyTypeTrackID
	d.nodes = append(d.nodes, nodeElement{
		Type:    nodePlaylist,
		Name:    name,
		KeyType: &keyType,
		Entries: &count,
		Tracks:  entries,
	})
}

// TrackCount reports the number of distinct tracks in the document.
func (d *Document) TrackCount() int {
	return len(d.tracks)
}

// Encode renders the document with an XML declaration.
func (d *Document) Encode() ([]byte, error) {
	count := len(d.nodes)
	root := djPlaylists{
		Version: documentVersion,
		Product: productElement{Name: productName, Version: d.version, Company: productCompany},
		Collection: collectionElem{
			Entries: len(d.tracks),
			Tracks:  d.tracks,
		},
		Playlists: playlistsElement{Root: nodeElement{
			Type:  nodeFolder,
			Name:  "ROOT",
			Count: &count,
			Nodes: d.nodes,
		}},
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	encoder := xml.NewEncoder(&buf)
	encoder.Indent("", "  ")
	if err := encoder.Encode(root); err != nil {
		return nil, fmt.Errorf("encode rekordbox document: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return nil, fmt.Errorf("encode rekordbox document: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func newTrackElement(t *track.ExportedTrack) trackElement {
	info := t.Context()
	element := trackElement{
		TrackID:    t.ID(),
		Name:       info.Title,
		Artist:     info.Artist,
		Album:      info.Album,
		Genre:      info.Genre,
		Kind:       KindLabel(info.Location),
		TotalTime:  info.Duration,
		SampleRate: strconv.FormatFloat(info.SampleRate, 'f', -1, 64),
		AverageBpm: formatBPM(info.BPM),
		Tonality:   info.Key,
		Rating:     info.Rating,
		Location:   LocationURI(info.Location),
	}
	if info.HasColour {
		element.Colour = info.Colour.Hex()
	}
	if grid, ok := t.BeatGrid(); ok {
		element.Tempo = &tempoElement{
			Inizio:  formatSeconds(grid.StartSec()),
			Bpm:     formatBPM(grid.BPM),
			Metro:   "4/4",
			Battito: "1",
		}
	}
	for _, cue := range t.Cues() {
		element.Marks = append(element.Marks, positionMarkElement{
			Name:  cue.Label,
			Type:  markCue,
			Start: formatSeconds(cue.StartSec()),
			Num:   cue.Index,
			Red:   cue.Colour.R(),
			Green: cue.Colour.G(),
			Blue:  cue.Colour.B(),
		})
	}
	return element
}

func formatBPM(bpm float64) string {
	return strconv.FormatFloat(bpm, 'f', 2, 64)
}

func formatSeconds(sec float64) string {
	return strconv.FormatFloat(sec, 'f', 3, 64)
}
