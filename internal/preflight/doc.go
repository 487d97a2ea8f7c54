// Package preflight provides readiness checks for the binaries and
// filesystem paths a run depends on.
//
// `storyreel run` calls RunAll before touching any input and refuses to start
// when a check fails; `storyreel doctor` renders the same results.
package preflight
