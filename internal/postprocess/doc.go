// Package postprocess assembles story clips and narration into one video.
//
// The pipeline is a strict three-stage batch over the output directory:
//
//	trimmed/<clip>          first scene removed (or copied whole)
//	merged/NNN_<stem>.mp4   clip re-timed to its narration, audio mixed
//	final_merged.mp4        stream-copy concatenation of merged/
//
// Each stage finishes before the next starts. Trim and align failures only
// drop the affected item; a concat failure fails the run. External tools are
// reached through the Prober, scenes.Detector, and Transcoder interfaces so
// the orchestration is testable without ffmpeg installed.
package postprocess
