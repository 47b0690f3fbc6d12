package commands_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ruminaider/salon-sync/internal/commands"
	"github.com/ruminaider/salon-sync/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitConfig(t *testing.T) {
	syncDir := filepath.Join(t.TempDir(), ".salon-sync")

	res, err := commands.InitConfig(commands.InitOptions{
		SyncDir: syncDir,
		APIURL:  "https://salon.example.com/",
		SalonID: "salon-1",
	})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(syncDir, "config.yaml"), res.Path)
	assert.Equal(t, "https://salon.example.com", res.Config.Client.APIURL)

	data, err := os.ReadFile(res.Path)
	require.NoError(t, err)
	cfg, err := config.Parse(data)
	require.NoError(t, err)
	assert.Equal(t, "salon-1", cfg.Client.SalonID)

	_, err = commands.InitConfig(commands.InitOptions{SyncDir: syncDir})
	assert.ErrorContains(t, err, "already exists")

	res, err = commands.InitConfig(commands.InitOptions{SyncDir: syncDir, Force: true})
	require.NoError(t, err)
	assert.Equal(t, config.Default().Client.APIURL, res.Config.Client.APIURL)
	assert.Empty(t, res.Config.Client.SalonID)
}

func TestInitConfigRequiresDir(t *testing.T) {
	_, err := commands.InitConfig(commands.InitOptions{})
	assert.Error(t, err)
}
