// Command storyreel turns a directory of story clips and a directory of
// matching narration tracks into one narrated video.
//
// `storyreel run` drives the trim, align, and concat pipeline and records the
// outcome in the run ledger. `storyreel doctor` checks external tools and
// directories, `storyreel history` reads the ledger back, and `storyreel
// config` writes or validates the TOML configuration.
package main
