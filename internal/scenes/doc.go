// Package scenes finds shot boundaries in a clip.
//
// Two backends implement Detector: SceneDetect shells out to the PySceneDetect
// CLI and reads its CSV scene list, FFmpeg parses showinfo output from a
// scene-score select filter. Only the end of the first scene matters to the
// trimmer, but both return the full list.
package scenes
