package testsupport

import "fmt"

// NoopScript exits successfully without output.
const NoopScript = "#!/bin/sh\nexit 0\n"

// FFmpegScript writes placeholder bytes to its last argument, which is where
// every pipeline job puts its output. A lone argument such as -version is
// ignored.
const FFmpegScript = "#!/bin/sh\n[ \"$#\" -gt 1 ] || exit 0\nfor last; do :; done\nprintf 'stub media' > \"$last\"\n"

// FFprobeScript reports one video and one audio stream of the given duration
// for any input.
func FFprobeScript(seconds float64) string {
	body := fmt.Sprintf(`{"streams":[{"codec_type":"video","avg_frame_rate":"25/1"},{"codec_type":"audio"}],"format":{"duration":"%.6f"}}`, seconds)
	return "#!/bin/sh\nprintf '%s' '" + body + "'\n"
}
