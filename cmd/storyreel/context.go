package main

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"storyreel/internal/config"
	"storyreel/internal/ledger"
)

// skipConfigAnnotation marks commands that load (or write) config themselves.
const skipConfigAnnotation = "skipConfigLoad"

// loadedConfig records where the effective config came from.
type loadedConfig struct {
	cfg      *config.Config
	path     string
	fromFile bool
}

// commandContext is shared by every subcommand; config is loaded at most once
// per process.
type commandContext struct {
	load func() (loadedConfig, error)
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{
		load: sync.OnceValues(func() (loadedConfig, error) {
			var flag string
			if configFlag != nil {
				flag = strings.TrimSpace(*configFlag)
			}
			cfg, path, exists, err := config.Load(flag)
			if err != nil {
				return loadedConfig{}, err
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return loadedConfig{}, err
			}
			return loadedConfig{cfg: cfg, path: path, fromFile: exists}, nil
		}),
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	loaded, err := c.load()
	return loaded.cfg, err
}

// configSource describes the config location for status output.
func (c *commandContext) configSource() (string, bool) {
	loaded, _ := c.load()
	return loaded.path, loaded.fromFile
}

// withLedger opens the run ledger for the loaded configuration.
func (c *commandContext) withLedger(fn func(*ledger.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := ledger.Open(cfg.LedgerPath())
	if err != nil {
		return fmt.Errorf("open run ledger: %w", err)
	}
	defer store.Close()
	return fn(store)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[skipConfigAnnotation] == "true" {
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
