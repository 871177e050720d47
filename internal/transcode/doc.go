// Package transcode relocates audio files for an export.
//
// Without a target format a track is copied byte for byte (mode and
// modification time kept) into the output directory. With a format the file
// is probed, its tags are read, and ffmpeg re-encodes it; every re-encode
// holds a slot of a Limiter shared by the whole run so the number of ffmpeg
// processes stays bounded no matter how many extraction workers exist.
//
// The returned document location is rooted at the virtual output directory,
// which is where the consuming machine will see the files.
package transcode
