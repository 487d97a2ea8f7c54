// Package ffprobe asks ffprobe the three questions the pipeline needs
// answered about a media file: how long it is, whether it carries audio,
// and what frame rate its video runs at.
package ffprobe
