// Package quill holds release metadata shared by the editor, the server and
// the CLI.
package quill

import (
	_ "embed"
	"regexp"
	"strings"
)

var semverRE = regexp.MustCompile(`^(0|[1-9]\d*)\.(0|[1-9]\d*)\.(0|[1-9]\d*)(?:-[0-9A-Za-z-]+(?:\.[0-9A-Za-z-]+)*)?(?:\+[0-9A-Za-z-]+(?:\.[0-9A-Za-z-]+)*)?$`)

//go:embed VERSION
var embeddedVersion string

// Version returns the release version in SemVer form (without `v`).
func Version() string {
	return strings.TrimSpace(embeddedVersion)
}

// VersionTag returns Version with the leading `v` used by git tags and
// `quill version`.
func VersionTag() string {
	return "v" + Version()
}

// UserAgent identifies a quill component in websocket handshakes and in the
// server's connection_status greeting, e.g. "quill-editor/0.3.0".
func UserAgent(component string) string {
	component = strings.TrimSpace(component)
	if component == "" {
		component = "quill"
	} else {
		component = "quill-" + component
	}
	return component + "/" + Version()
}

// IsSemver reports whether v matches SemVer 2.0.0.
func IsSemver(v string) bool {
	return semverRE.MatchString(strings.TrimSpace(v))
}
