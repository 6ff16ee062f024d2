package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	_ "github.com/frame-go/cachekit/cache/bigcache"
	_ "github.com/frame-go/cachekit/cache/local"
	_ "github.com/frame-go/cachekit/cache/redis"
	"github.com/frame-go/cachekit/config"
	"github.com/frame-go/cachekit/errors"
	"github.com/frame-go/cachekit/log"
)

type cli struct {
	store *config.CacheStore
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	cmd := &cobra.Command{
		Use:          "cachectl",
		Short:        "Manage named cache configs",
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.init()
		},
	}
	config.BindArgs(cmd)
	cmd.AddCommand(
		c.listCmd(),
		c.showCmd(),
		c.setCmd(),
		c.removeServerCmd(),
		c.pingCmd(),
	)
	return cmd
}

func (c *cli) init() error {
	if err := config.InitConfig(); err != nil {
		return errors.Wrap(err, "init_config_error")
	}
	log.Init(viper.GetString("log_level"), viper.GetBool("debug"), viper.GetBool("beautify_log"))
	c.store = config.NewCacheStore(nil,
		config.WithSecret(viper.GetString("cache_secret")),
		config.WithLogger(log.Get()),
	)
	return nil
}
