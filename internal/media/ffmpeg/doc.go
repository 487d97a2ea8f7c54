// Package ffmpeg builds and executes the ffmpeg invocations used for
// trimming, aligning, and concatenating clips.
//
// Argument builders (TrimCopyArgs, TrimReencodeArgs, AlignArgs, ConcatArgs)
// are pure so they can be asserted on directly; Runner is the only part that
// touches the process table.
package ffmpeg
