package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"exifatlas/internal/catalog"
	"exifatlas/internal/config"
	"exifatlas/internal/logging"
)

type commandContext struct {
	configFlag *string
	dbFlag     *string
	folderFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag, dbFlag, folderFlag *string) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		dbFlag:     dbFlag,
		folderFlag: folderFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(flagValue(c.configFlag))
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// dbPath picks the catalog for this invocation: --db, then the folder
// (argument or --folder), then the default catalog.
func (c *commandContext) dbPath(folder string) (string, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return "", err
	}
	if db := flagValue(c.dbFlag); db != "" {
		return config.ExpandPath(db)
	}
	if strings.TrimSpace(folder) == "" {
		folder = flagValue(c.folderFlag)
	}
	if folder != "" {
		return cfg.DBPathForFolder(folder), nil
	}
	return cfg.DefaultDBPath(), nil
}

func (c *commandContext) openStore(folder string) (*catalog.Store, error) {
	path, err := c.dbPath(folder)
	if err != nil {
		return nil, err
	}
	store, err := catalog.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	return store, nil
}

func (c *commandContext) withStore(folder string, fn func(*catalog.Store) error) error {
	store, err := c.openStore(folder)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

// newLogger writes the configured format to the command's stderr and JSON to
// the log file in paths.log_dir.
func (c *commandContext) newLogger(cmd *cobra.Command) (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	var outputs []string
	if cfg.Paths.LogDir != "" {
		if err := os.MkdirAll(cfg.Paths.LogDir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure log directory: %w", err)
		}
		outputs = append(outputs, filepath.Join(cfg.Paths.LogDir, logging.LogFileName))
	}
	logger, err := logging.New(logging.Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: outputs,
		Writer:      cmd.ErrOrStderr(),
	})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return logger, nil
}

func flagValue(flag *string) string {
	if flag == nil {
		return ""
	}
	return strings.TrimSpace(*flag)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
