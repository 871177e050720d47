// Package rekordbox builds the XML collection document that Rekordbox
// imports.
//
// A Document accumulates collections. Every track appears once in the
// COLLECTION element no matter how many collections reference it; each
// collection becomes a playlist node under PLAYLISTS/ROOT that refers to
// its tracks by TrackID in collection order.
package rekordbox
