package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultRepositories(t *testing.T) {
	repos, err := LoadDefaultRepositories()
	require.NoError(t, err)
	require.Len(t, repos, 2)

	assert.Equal(t, "local-cache", repos[0].Name)
	assert.True(t, repos[0].Local)

	assert.Equal(t, "central", repos[1].Name)
	assert.True(t, repos[1].Authoritative)
	assert.EqualValues(t, "fail", repos[1].ChecksumPolicy)
	assert.Equal(t, 86400, repos[1].SnapshotRecheckInterval)
}

func TestDefaultString_FallsBackWhenEmpty(t *testing.T) {
	assert.Equal(t, "warn", defaultString("", "warn"))
	assert.Equal(t, "fail", defaultString("fail", "warn"))
}
