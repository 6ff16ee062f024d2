package config

import (
	"fmt"
	"time"

	"github.com/shima-park/agollo"
	remote "github.com/shima-park/agollo/viper-remote"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/frame-go/cachekit/log"
)

const apolloDefaultNamespace = "cachekit.yaml"
const apolloLongPollerInterval = 10 * time.Second
const apolloHeartBeatInterval = 5 * time.Minute

func bindApolloArgs(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	for _, arg := range []struct{ flag, key, usage string }{
		{"apollo-server", "apollo_server", "apollo server endpoint"},
		{"apollo-app-id", "apollo_app_id", "apollo app id"},
		{"apollo-access-key", "apollo_access_key", "apollo app access key secret"},
		{"apollo-cluster", "apollo_cluster", "apollo cluster"},
		{"apollo-namespace", "apollo_namespace", "apollo namespace holding cache configs"},
	} {
		flags.String(arg.flag, "", arg.usage)
		_ = viper.BindPFlag(arg.key, flags.Lookup(arg.flag))
	}
}

// initApolloConfig adds Apollo as remote provider when server and app id are set.
// Cache configs read through CacheStore follow remote updates.
func initApolloConfig() error {
	server := viper.GetString("apollo_server")
	appID := viper.GetString("apollo_app_id")
	if server == "" || appID == "" {
		return nil
	}
	namespace := viper.GetString("apollo_namespace")
	if namespace == "" {
		namespace = apolloDefaultNamespace
	}
	cluster := viper.GetString("apollo_cluster")
	if cluster == "" {
		cluster = "default"
	}
	remote.SetAppID(appID)
	remote.SetAgolloOptions(
		agollo.AccessKey(viper.GetString("apollo_access_key")),
		agollo.Cluster(cluster),
		agollo.AutoFetchOnCacheMiss(),
		agollo.LongPollerInterval(apolloLongPollerInterval),
		agollo.FailTolerantOnBackupExists(),
		agollo.HeartBeatInterval(apolloHeartBeatInterval),
		agollo.WithLogger(&AgolloZerologAdapter{}),
	)
	viper.SetConfigType(getConfigType(namespace))
	err := viper.AddRemoteProvider("apollo", server, namespace)
	if err != nil {
		return err
	}
	err = viper.ReadRemoteConfig()
	if err != nil {
		return err
	}
	return viper.GetViper().WatchRemoteConfigOnChannel()
}

type AgolloZerologAdapter struct {
}

func (l *AgolloZerologAdapter) Log(kvs ...interface{}) {
	if log.Logger == nil {
		fmt.Println(kvs...)
		return
	}
	event := log.Logger.Debug()
	for i := 0; i+1 < len(kvs); i += 2 {
		if key, ok := kvs[i].(string); ok {
			event = event.Interface(key, kvs[i+1])
		}
	}
	event.Msg("apollo_client")
}
