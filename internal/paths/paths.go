package paths

import (
	"os"
	"path/filepath"
)

func home() string {
	h, _ := os.UserHomeDir()
	return h
}

// SyncDir returns ~/.salon-sync.
func SyncDir() string {
	return filepath.Join(home(), ".salon-sync")
}

// ConfigFile returns ~/.salon-sync/config.yaml.
func ConfigFile() string {
	return filepath.Join(SyncDir(), "config.yaml")
}

// EnvFile returns ~/.salon-sync/.env.
func EnvFile() string {
	return filepath.Join(SyncDir(), ".env")
}

// UploadDir returns ~/.salon-sync/uploads, the default asset directory for
// a locally served backend.
func UploadDir() string {
	return filepath.Join(SyncDir(), "uploads")
}
