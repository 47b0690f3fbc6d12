package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ruminaider/salon-sync/internal/config"
)

// InitOptions configures InitConfig.
type InitOptions struct {
	SyncDir string
	APIURL  string
	SalonID string
	Token   string
	// Force overwrites an existing config file.
	Force bool
}

// InitResult describes the written config.
type InitResult struct {
	Path   string
	Config config.Config
}

// InitConfig writes config.yaml under opts.SyncDir, starting from defaults.
func InitConfig(opts InitOptions) (*InitResult, error) {
	if opts.SyncDir == "" {
		return nil, fmt.Errorf("sync directory is required")
	}
	path := filepath.Join(opts.SyncDir, "config.yaml")
	if _, err := os.Stat(path); err == nil && !opts.Force {
		return nil, fmt.Errorf("%s already exists. Use --force to overwrite", path)
	}
	if err := os.MkdirAll(opts.SyncDir, 0700); err != nil {
		return nil, fmt.Errorf("creating %s: %w", opts.SyncDir, err)
	}

	cfg := config.Default()
	if u := strings.TrimSpace(opts.APIURL); u != "" {
		cfg.Client.APIURL = strings.TrimRight(u, "/")
	}
	cfg.Client.SalonID = strings.TrimSpace(opts.SalonID)
	cfg.Client.Token = strings.TrimSpace(opts.Token)

	if err := config.Write(path, cfg); err != nil {
		return nil, err
	}
	return &InitResult{Path: path, Config: cfg}, nil
}
