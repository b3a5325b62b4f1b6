package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/gordian-engine/dmerkle"
	"github.com/gordian-engine/dmerkle/dblock"
	"github.com/gordian-engine/dmerkle/dhash"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	optionNameBlockSize  = "block-size"
	optionNameHash       = "hash"
	optionNameWorkers    = "workers"
	optionNameVerbosity  = "verbosity"
	optionNameIndex      = "index"
	optionNameBlock      = "block"
	optionNameExpectRoot = "expect-root"
)

const defaultBlockSize = 4096

func init() {
	cobra.EnableCommandSorting = false
}

type command struct {
	root    *cobra.Command
	config  *viper.Viper
	cfgFile string
	homeDir string
}

type option func(*command)

func newCommand(opts ...option) (c *command, err error) {
	c = &command{
		root: &cobra.Command{
			Use:           "dmerkle",
			Short:         "Merkle roots and block verification for files",
			SilenceErrors: true,
			SilenceUsage:  true,
			PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
				if err := c.initConfig(); err != nil {
					return err
				}
				return c.config.BindPFlags(cmd.Flags())
			},
		},
	}

	for _, o := range opts {
		o(c)
	}

	if err := c.setHomeDir(); err != nil {
		return nil, err
	}

	c.initGlobalFlags()

	c.initRootCmd()
	c.initVerifyCmd()
	c.initVersionCmd()

	return c, nil
}

func (c *command) Execute() (err error) {
	return c.root.Execute()
}

// Execute parses command line arguments and runs appropriate functions.
func Execute() (err error) {
	c, err := newCommand()
	if err != nil {
		return err
	}
	return c.Execute()
}

func (c *command) initGlobalFlags() {
	globalFlags := c.root.PersistentFlags()
	globalFlags.StringVar(&c.cfgFile, "config", c.cfgFile, "config file (default is $HOME/.dmerkle.yaml)")
	globalFlags.Int(optionNameBlockSize, defaultBlockSize, "size in bytes of each block the file is split into")
	globalFlags.String(optionNameHash, hashSHA256, "digest primitive: "+strings.Join(hashNames(), ", "))
	globalFlags.Int(optionNameWorkers, 1, "goroutines used to hash each tree level")
	globalFlags.String(optionNameVerbosity, "info", "log verbosity level: error, warn, info, debug")
}

func (c *command) initConfig() (err error) {
	config := viper.New()
	configName := ".dmerkle"
	if c.cfgFile != "" {
		// Use config file from the flag.
		config.SetConfigFile(c.cfgFile)
	} else {
		// Search config in home directory with name ".dmerkle" (without extension).
		config.AddConfigPath(c.homeDir)
		config.SetConfigName(configName)
	}

	// Environment
	config.SetEnvPrefix("dmerkle")
	config.AutomaticEnv() // read in environment variables that match
	config.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	// If a config file is found, read it in.
	if err := config.ReadInConfig(); err != nil {
		var e viper.ConfigFileNotFoundError
		if !errors.As(err, &e) {
			return err
		}
	}
	c.config = config
	return nil
}

func (c *command) setHomeDir() (err error) {
	if c.homeDir != "" {
		return
	}
	dir, err := os.UserHomeDir()
	if err != nil {
		return err
	}
	c.homeDir = dir
	return nil
}

func newLogger(cmd *cobra.Command, verbosity string) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(verbosity)); err != nil {
		return nil, fmt.Errorf("unknown verbosity level %q", verbosity)
	}

	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: level,
	})), nil
}

// splitFile reads the file at path and commits it to a tree
// according to the block size, hash and worker options.
func (c *command) splitFile(log *slog.Logger, path string) (*dblock.Set, error) {
	blockSize := c.config.GetInt(optionNameBlockSize)
	if blockSize <= 0 {
		return nil, fmt.Errorf("%s must be positive (got %d)", optionNameBlockSize, blockSize)
	}

	workers := c.config.GetInt(optionNameWorkers)
	if workers < 0 {
		return nil, fmt.Errorf("%s must be non-negative (got %d)", optionNameWorkers, workers)
	}

	f, err := hashFactory(c.config.GetString(optionNameHash))
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	buildCfg := dmerkle.BuildConfig{
		Engine:  dhash.New(f),
		Workers: workers,
	}

	s, err := dblock.Split(log, data, dblock.SplitConfig{
		BlockSize: blockSize,
		Build:     buildCfg,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to split %s: %w", path, err)
	}
	return s, nil
}
