package rekordbox

import "encoding/xml"

type djPlaylists struct {
	XMLName    xml.Name         `xml:"DJ_PLAYLISTS"`
	Version    string           `xml:"Version,attr"`
	Product    productElement   `xml:"PRODUCT"`
	Collection collectionElem   `xml:"COLLECTION"`
	Playlists  playlistsElement `xml:"PLAYLISTS"`
}

type productElement struct {
	Name    string `xml:"Name,attr"`
	Version string `xml:"Version,attr"`
	Company string `xml:"Company,attr"`
}

type collectionElem struct {
	Entries int            `xml:"Entries,attr"`
	Tracks  []trackElement `xml:"TRACK"`
}

type trackElement struct {
	TrackID    string                `xml:"TrackID,attr"`
	Name       string                `xml:"Name,attr"`
	Artist     string                `xml:"Artist,attr"`
	Album      string                `xml:"Album,attr"`
	Genre      string                `xml:"Genre,attr"`
	Kind       string                `xml:"Kind,attr"`
	TotalTime  int                   `xml:"TotalTime,attr"`
	SampleRate string                `xml:"SampleRate,attr"`
	AverageBpm string                `xml:"AverageBpm,attr"`
	Tonality   string                `xml:"Tonality,attr"`
	Rating     int                   `xml:"Rating,attr"`
	Location   string                `xml:"Location,attr"`
	Colour     string                `xml:"Colour,attr,omitempty"`
	Tempo      *tempoElement         `xml:"TEMPO,omitempty"`
	Marks      []positionMarkElement `xml:"POSITION_MARK"`
}

type tempoElement struct {
	Inizio  string `xml:"Inizio,attr"`
	Bpm     string `xml:"Bpm,attr"`
	Metro   string `xml:"Metro,attr"`
	Battito string `xml:"Battito,attr"`
}

type positionMarkElement struct {
	Name  string `xml:"Name,attr"`
	Type  string `xml:"Type,attr"`
	Start string `xml:"Start,attr"`
	Num   int    `xml:"Num,attr"`
	Red   int    `xml:"Red,attr"`
	Green int    `xml:"Green,attr"`
	Blue  int    `xml:"Blue,attr"`
}

type playlistsElement struct {
	Root nodeElement `xml:"NODE"`
}

// nodeElement is a folder (Type 0) or a playlist (Type 1).
type nodeElement struct {
	Type    string          `xml:"Type,attr"`
	Name    string          `xml:"Name,attr"`
	Count   *int            `xml:"Count,attr,omitempty"`
	KeyType *string         `xml:"KeyType,attr,omitempty"`
	Entries *int            `xml:"Entries,attr,omitempty"`
	Nodes   []nodeElement   `xml:"NODE"`
	Tracks  []playlistTrack `xml:"TRACK"`
}

type playlistTrack struct {
	Key string `xml:"Key,attr"`
}
