// Copyright (c) 2013-2014 The btcsuite developers
// Copyright (c) 2026 The cvm developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package version houses the version information for cvmbench.
package version

import (
	"fmt"
	"strings"
)

const (
	// preReleaseAlphabet defines the allowed characters for the pre-release
	// portion of a semantic version string.
	preReleaseAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz-"

	// buildAlphabet additionally allows dots in the build metadata.
	buildAlphabet = preReleaseAlphabet + "."
)

// The application version per semantic versioning 2.0.0.
const (
	Major uint = 0
	Minor uint = 1
	Patch uint = 0
)

var (
	// PreRelease may be overridden at link time with
	// '-ldflags "-X github.com/cvmsuite/cvm/internal/version.PreRelease=foo"'.
	// Characters outside preReleaseAlphabet are dropped.
	PreRelease = "beta"

	// BuildMetadata may be overridden at link time the same way.
	BuildMetadata = ""
)

// String returns the application version formatted as
// major.minor.patch[-prerelease][+build].
func String() string {
	return format(Major, Minor, Patch, PreRelease, BuildMetadata)
}

func format(major, minor, patch uint, preRelease, build string) string {
	version := fmt.Sprintf("%d.%d.%d", major, minor, patch)
	if pre := normalize(preRelease, preReleaseAlphabet); pre != "" {
		version += "-" + pre
	}
	if b := normalize(build, buildAlphabet); b != "" {
		version += "+" + b
	}
	return version
}

// normalize strips every character of str that is not in alphabet.
func normalize(str, alphabet string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(alphabet, r) {
			return r
		}
		return -1
	}, str)
}
