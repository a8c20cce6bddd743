package app_config

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSyncerAppConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, ioutil.WriteFile(path, []byte(`
CHANNEL_ID: "lollypop"
PAGE_LIMIT: 100
SYNC_INTERVAL_SECOND: 3600
RECOMPUTE_WINDOW_HOUR: 24
POST_POINTS: 169
LIKE_POINTS: 10
RECAST_POINTS: 40
`), 0644))

	config := ParseSyncerAppConfig(path)

	assert.Equal(t, "lollypop", config.CHANNEL_ID)
	assert.Equal(t, 100, config.PAGE_LIMIT)
	assert.Equal(t, int64(3600), config.SYNC_INTERVAL_SECOND)
	assert.Equal(t, int64(24), config.RECOMPUTE_WINDOW_HOUR)
	assert.Equal(t, int64(169), config.POST_POINTS)
	assert.Equal(t, int64(10), config.LIKE_POINTS)
	assert.Equal(t, int64(40), config.RECAST_POINTS)
}

func TestParseSyncerAppConfigCheckedIn(t *testing.T) {
	// Keep the shipped syncer config parseable.
	path := filepath.Join("..", "cmd", "syncer", "config.yaml")
	if _, err := os.Stat(path); err != nil {
		t.Skip("checked-in config not present")
	}

	config := ParseSyncerAppConfig(path)
	assert.NotEmpty(t, config.CHANNEL_ID)
	assert.Greater(t, config.PAGE_LIMIT, 0)
}
