package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/frame-go/cachekit/cache"
	"github.com/frame-go/cachekit/cache/metrics"
	"github.com/frame-go/cachekit/encoding/json"
	"github.com/frame-go/cachekit/errors"
	"github.com/frame-go/cachekit/log"
)

const (
	pingKeyPrefix   = "cachectl:ping:"
	defaultProvider = "redis"
	maskedPassword  = "******"
)

var errServerNotFound = errors.New("server_not_found")

func (c *cli) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List cache names in config",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range c.store.Names() {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

func (c *cli) showCmd() *cobra.Command {
	var field string
	cmd := &cobra.Command{
		Use:   "show <name>",
		Short: "Print a cache config as json",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if field != "" {
				section, ok := c.store.Section(name)
				if !ok {
					return errors.Wrap(cache.ErrConfigNotFound, "show_cache_config_error").With("name", name)
				}
				value, err := section.Get(field)
				if err != nil {
					return errors.Wrap(err, "show_cache_field_error").With("field", field)
				}
				return printJSON(cmd, value)
			}
			config, err := c.store.ReadConfig(name)
			if err != nil {
				return err
			}
			if config.Password != "" {
				config.Password = maskedPassword
			}
			return printJSON(cmd, config)
		},
	}
	cmd.Flags().StringVarP(&field, "field", "f", "", "json path inside the config, e.g. servers[0].address")
	return cmd
}

func (c *cli) setCmd() *cobra.Command {
	var (
		provider string
		timeout  int
		expire   int
		pool     int
		clients  int
		retry    int
		mode     string
		master   string
		user     string
		password string
		servers  []string
	)
	cmd := &cobra.Command{
		Use:   "set <name>",
		Short: "Create or update a cache config",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			builder := cache.LoadBuilder(c.store, name)
			flags := cmd.Flags()
			if flags.Changed("provider") {
				builder.ProviderName(provider)
			}
			if flags.Changed("timeout") {
				builder.ConnectTimeout(timeout)
			}
			if flags.Changed("expire") {
				builder.ExpireTime(expire)
			}
			if flags.Changed("pool") {
				builder.ClientPoolSize(pool)
			}
			if flags.Changed("max-clients") {
				builder.MaximumClient(clients)
			}
			if flags.Changed("retry") {
				builder.RetryCount(retry)
			}
			if flags.Changed("mode") {
				m, err := cache.ParseClusterMode(mode)
				if err != nil {
					return err
				}
				builder.ClusterMode(m)
			}
			if flags.Changed("master") {
				builder.MasterName(master)
			}
			if flags.Changed("user") || flags.Changed("password") {
				builder.Authorization(user, password)
			}
			if len(servers) > 0 {
				text := strings.Join(servers, "\n")
				if _, err := cache.ParseServers(text); err != nil {
					return err
				}
				builder.Servers(text)
			}
			modified := builder.Modified()
			config, err := builder.Build()
			if err != nil {
				return err
			}
			log.Get().Info().Str("name", name).Bool("modified", modified).Msg("cache_config_set")
			if config.Password != "" {
				config.Password = maskedPassword
			}
			return printJSON(cmd, config)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&provider, "provider", "", "cache provider name, e.g. redis or local")
	flags.IntVar(&timeout, "timeout", cache.DefaultConnectTimeout, "connect timeout in seconds")
	flags.IntVar(&expire, "expire", cache.DefaultExpireTime, "default expire time in seconds, -1 never expires")
	flags.IntVar(&pool, "pool", cache.DefaultClientPoolSize, "idle client pool size")
	flags.IntVar(&clients, "max-clients", cache.DefaultMaximumClient, "maximum number of clients")
	flags.IntVar(&retry, "retry", cache.DefaultRetryCount, "retry count")
	flags.StringVar(&mode, "mode", "", "cluster mode: standalone, sharded, cluster, sentinel")
	flags.StringVar(&master, "master", "", "sentinel master name")
	flags.StringVar(&user, "user", "", "username")
	flags.StringVar(&password, "password", "", "password")
	flags.StringSliceVar(&servers, "servers", nil, "servers as address[:port][|weight], repeatable")
	return cmd
}

func (c *cli) removeServerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove-server <name> <address> [port]",
		Short: "Remove a server from a cache config",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, address := args[0], args[1]
			port := cache.DefaultPort
			if len(args) == 3 {
				p, err := strconv.Atoi(args[2])
				if err != nil {
					return errors.Wrap(err, "invalid_server_port").With("port", args[2])
				}
				port = p
			}
			config, err := c.store.ReadConfig(name)
			if err != nil {
				return err
			}
			found := false
			for _, server := range config.Servers {
				if server.Match(address, port) {
					found = true
					break
				}
			}
			if !found {
				return errors.Wrap(errServerNotFound, "remove_server_error").
					With("name", name).With("address", address).With("port", port)
			}
			config, err = cache.LoadBuilder(c.store, name).RemoveServer(address, port).Build()
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), cache.FormatServers(config.Servers))
			return nil
		},
	}
}

func (c *cli) pingCmd() *cobra.Command {
	var (
		timeout     time.Duration
		showMetrics bool
	)
	cmd := &cobra.Command{
		Use:   "ping <name>",
		Short: "Register a cache and round trip a key through its client",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			config, err := c.store.ReadConfig(name)
			if err != nil {
				return err
			}
			provider := viper.GetString("cache_provider")
			if provider == "" {
				provider = config.ProviderName
			}
			if provider == "" {
				provider = defaultProvider
			}
			cache.SetupInstance(c.store, cache.WithProvider(provider), cache.WithLogger(log.Get()))
			defer cache.Destroy()

			if name != cache.DefaultName && !cache.Register(name) {
				return errors.New("register_cache_error").With("name", name).With("provider", provider)
			}
			raw, ok := cache.GetClient(name)
			if !ok {
				return errors.New("cache_client_not_found").With("name", name).With("provider", provider)
			}
			registry := prometheus.NewRegistry()
			collector := metrics.NewCollector("cachectl")
			registry.MustRegister(collector)
			client := collector.Wrap(name, raw)
			pingKey := pingKeyPrefix + uuid.NewString()

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			start := time.Now()
			sent := strconv.FormatInt(start.UnixNano(), 10)
			if err = client.Set(ctx, pingKey, sent, time.Minute); err != nil {
				return errors.Wrap(err, "ping_set_error").With("name", name)
			}
			var received string
			if err = client.Get(ctx, pingKey, &received); err != nil {
				return errors.Wrap(err, "ping_get_error").With("name", name)
			}
			if received != sent {
				return errors.New("ping_value_mismatch").With("sent", sent).With("received", received)
			}
			_, _ = client.Delete(ctx, pingKey)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "PONG %s provider=%s rtt=%s\n", name, provider, time.Since(start))
			if showMetrics {
				return printMetrics(cmd, registry)
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "ping timeout")
	cmd.Flags().BoolVar(&showMetrics, "metrics", false, "print request metrics of the ping in prometheus text format")
	return cmd
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	s, err := json.MarshalIndentString(v)
	if err != nil {
		return errors.Wrap(err, "encode_output_error")
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), s)
	return err
}

func printMetrics(cmd *cobra.Command, registry *prometheus.Registry) error {
	families, err := registry.Gather()
	if err != nil {
		return errors.Wrap(err, "gather_metrics_error")
	}
	for _, family := range families {
		if _, err = expfmt.MetricFamilyToText(cmd.OutOrStdout(), family); err != nil {
			return errors.Wrap(err, "encode_metrics_error")
		}
	}
	return nil
}
