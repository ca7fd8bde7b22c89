// SPDX-License-Identifier: MIT
package build

import (
	"os"
	"testing"
)

var (
	origName    string
	origTime    string
	origCommit  string
	origVersion string
	origFlags   ldFlags
)

func TestMain(m *testing.M) {
	origName = buildName
	origTime = buildTime
	origCommit = buildCommit
	origVersion = buildVersion
	origFlags = *buildFlags

	exitCode := m.Run()

	buildName = origName
	buildTime = origTime
	buildCommit = origCommit
	buildVersion = origVersion
	*buildFlags = origFlags

	os.Exit(exitCode)
}

func resetFlags() {
	*buildFlags = ldFlags{
		Name:    "vortex",
		Time:    "unknown",
		Commit:  "unknown",
		Version: "dev",
	}
}

func TestInitialize(t *testing.T) {
	tests := []struct {
		name        string
		buildName   string
		buildTime   string
		buildCommit string
		buildVer    string
		want        ldFlags
	}{
		{
			"All flags set",
			"vortex",
			"2025-08-23",
			"abcdef123",
			"v1.0.0",
			ldFlags{"vortex", "2025-08-23", "abcdef123", "v1.0.0"},
		},
		{
			"No flags keeps development defaults",
			"",
			"",
			"",
			"",
			ldFlags{"vortex", "unknown", "unknown", "dev"},
		},
		{
			"Partial flags keep remaining defaults",
			"",
			"",
			"abcdef123",
			"v2.1.0",
			ldFlags{"vortex", "unknown", "abcdef123", "v2.1.0"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetFlags()
			buildName = tt.buildName
			buildTime = tt.buildTime
			buildCommit = tt.buildCommit
			buildVersion = tt.buildVer

			Initialize()

			if *buildFlags != tt.want {
				t.Errorf("buildFlags = %+v, want %+v", *buildFlags, tt.want)
			}
		})
	}
}

func TestGetBuildFlags(t *testing.T) {
	expected := ldFlags{
		Name:    "vortex",
		Time:    "2025-08-23",
		Commit:  "abcdef123",
		Version: "v1.0.0",
	}
	buildFlags = &expected

	flags := GetBuildFlags()

	if *flags != expected {
		t.Errorf("GetBuildFlags() = %+v, want %+v", flags, expected)
	}
}
