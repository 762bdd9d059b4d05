package version

import (
	"fmt"
	"strings"

	"golang.org/x/mod/semver"
)

// Version is the service current released version.
// Override at build time with:
//
//	go build -ldflags "-X github.com/hrygo/moodsense/internal/version.Version=0.2.0"
var Version = "0.1.0"

// DevVersion is the service current development version.
var DevVersion = "0.1.0"

// GitCommit is the git commit hash at build time.
var GitCommit = "unknown"

func GetCurrentVersion(mode string) string {
	if mode == "dev" || mode == "demo" {
		return DevVersion
	}
	return Version
}

// GetMinorVersion extracts the minor version (e.g. "0.1") from "0.1.3".
// Returns an empty string when the version has fewer than two components.
func GetMinorVersion(version string) string {
	versionList := strings.Split(version, ".")
	if len(versionList) < 2 {
		return ""
	}
	return versionList[0] + "." + versionList[1]
}

// IsVersionGreaterOrEqualThan returns true if version is greater than or equal to target.
func IsVersionGreaterOrEqualThan(version, target string) bool {
	return semver.Compare(fmt.Sprintf("v%s", version), fmt.Sprintf("v%s", target)) > -1
}

// IsVersionGreaterThan returns true if version is greater than target.
func IsVersionGreaterThan(version, target string) bool {
	return semver.Compare(fmt.Sprintf("v%s", version), fmt.Sprintf("v%s", target)) > 0
}

// IsValid reports whether version is a well-formed "major.minor.patch" string.
func IsValid(version string) bool {
	return semver.IsValid(fmt.Sprintf("v%s", version))
}

type SortVersion []string

func (s SortVersion) Len() int {
	return len(s)
}

func (s SortVersion) Swap(i, j int) {
	s[i], s[j] = s[j], s[i]
}

func (s SortVersion) Less(i, j int) bool {
	return semver.Compare(fmt.Sprintf("v%s", s[i]), fmt.Sprintf("v%s", s[j])) == -1
}

// String returns the version with a short commit suffix when known.
func String() string {
	v := Version
	if GitCommit != "" && GitCommit != "unknown" {
		short := GitCommit
		if len(short) > 8 {
			short = short[:8]
		}
		v = fmt.Sprintf("%s-%s", v, short)
	}
	return v
}
