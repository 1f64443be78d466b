// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package version

import (
	"runtime/debug"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromBuildInfo(t *testing.T) {
	info := &debug.BuildInfo{
		Main: debug.Module{Version: "v0.3.1"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "0123456789abcdef"},
			{Key: "vcs.time", Value: "2026-03-01T10:00:00Z"},
		},
	}

	v, c, d := fromBuildInfo(info, "dev", "none", "unknown")
	assert.Equal(t, "v0.3.1", v)
	assert.Equal(t, "0123456", c)
	assert.Equal(t, "2026-03-01T10:00:00Z", d)

	v, c, d = fromBuildInfo(info, "1.0.0", "abcdef0", "2026-01-01")
	assert.Equal(t, "1.0.0", v, "ldflags values win")
	assert.Equal(t, "abcdef0", c)
	assert.Equal(t, "2026-01-01", d)

	v, _, _ = fromBuildInfo(&debug.BuildInfo{Main: debug.Module{Version: "(devel)"}}, "dev", "none", "unknown")
	assert.Equal(t, "dev", v)
}

func TestInfo(t *testing.T) {
	assert.True(t, strings.HasPrefix(Info(), "blueprint version "+Version+" "))
	assert.Equal(t, Version, Short())
}
