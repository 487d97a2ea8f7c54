// Package deps checks that the external binaries storyreel drives are
// installed and reports their versions.
package deps
