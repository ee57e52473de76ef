package health

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVersionStringDev(t *testing.T) {
	t.Setenv("BUILD_VERSION", "")
	t.Setenv("BUILD_COMMIT", "")

	assert.Equal(t, "gw/dev", VersionString("gw"))
}

func TestVersionStringWithBuildMetadata(t *testing.T) {
	t.Setenv("BUILD_VERSION", "1.4.0")
	t.Setenv("BUILD_COMMIT", "0123456789abcdef")

	assert.Equal(t, "gw/1.4.0-0123456", VersionString("gw"))
}

func TestParseBuildInfoFile(t *testing.T) {
	info := parseBuildInfoFile("# build metadata\nVERSION=2.0.1\nGIT_COMMIT=deadbee\n\nignored line\n")

	assert.Equal(t, "2.0.1", info.Version)
	assert.Equal(t, "deadbee", info.GitCommit)
}

func TestShortCommit(t *testing.T) {
	assert.Equal(t, "0123456", shortCommit("0123456789"))
	assert.Equal(t, "abc", shortCommit("abc"))
}
