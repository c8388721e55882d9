// Package magetasks provides the build, test, lint and example tasks used by
// the Magefile.
package magetasks
