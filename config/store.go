package config

import (
	"math"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/frame-go/cachekit/cache"
	"github.com/frame-go/cachekit/copy"
	"github.com/frame-go/cachekit/crypto"
	"github.com/frame-go/cachekit/errors"
	"github.com/frame-go/cachekit/log"
)

// CachesKey is the config section holding named cache configs
const CachesKey = "caches"

const encryptedPrefix = "{aes}"

var ErrMissingSecret = errors.New("cache_password_secret_missing")

type storeOptions struct {
	secret string
	logger *zerolog.Logger
}

type StoreOption func(*storeOptions)

// WithSecret encrypts passwords on write and decrypts them on read
func WithSecret(secret string) StoreOption {
	return func(o *storeOptions) {
		o.secret = secret
	}
}

func WithLogger(logger *zerolog.Logger) StoreOption {
	return func(o *storeOptions) {
		o.logger = logger
	}
}

// CacheStore persists cache configs under the "caches" section of a viper instance.
// Names are case-insensitive, following viper keys.
type CacheStore struct {
	v      *viper.Viper
	secret string
	logger *zerolog.Logger
}

var _ cache.Store = (*CacheStore)(nil)

// NewCacheStore creates a store on v, or on the global viper when v is nil
func NewCacheStore(v *viper.Viper, opts ...StoreOption) *CacheStore {
	o := storeOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if v == nil {
		v = viper.GetViper()
	}
	if o.logger == nil {
		o.logger = log.Get()
	}
	return &CacheStore{v: v, secret: o.secret, logger: o.logger}
}

// ReadConfig decodes and validates caches.<name>.
// Fields absent from the section keep the defaults of cache.NewConfig.
func (s *CacheStore) ReadConfig(name string) (*cache.Config, error) {
	key := configKey(name)
	raw := s.v.GetStringMap(key)
	if len(raw) == 0 {
		return nil, errors.Wrap(cache.ErrConfigNotFound, "read_cache_config_error").With("key", key)
	}
	config := cache.NewConfig()
	if err := StringMap(raw).ToStructWithValidation(config); err != nil {
		return nil, errors.Wrap(err, "decode_cache_config_error").With("key", key)
	}
	password, err := s.decryptPassword(config.Password)
	if err != nil {
		return nil, errors.Wrap(err, "decrypt_cache_password_error").With("key", key)
	}
	config.Password = password
	s.logger.Debug().Str("key", key).Int("servers", len(config.Servers)).Msg("cache_config_loaded")
	return config, nil
}

// WriteConfig stores config under caches.<name> and writes the config file when one is in use
func (s *CacheStore) WriteConfig(name string, config *cache.Config) error {
	key := configKey(name)
	if config == nil {
		return errors.New("write_nil_cache_config").With("key", key)
	}
	if err := validate(config); err != nil {
		return errors.Wrap(err, "write_cache_config_error").With("key", key)
	}
	stored := config.Clone()
	if stored.Password != "" && s.secret != "" {
		encrypted, err := crypto.EncryptString(stored.Password, s.secret)
		if err != nil {
			return errors.Wrap(err, "encrypt_cache_password_error").With("key", key)
		}
		stored.Password = encryptedPrefix + encrypted
	}
	value := map[string]interface{}{}
	if err := copy.JsonDeepCopy(&value, stored); err != nil {
		return errors.Wrap(err, "encode_cache_config_error").With("key", key)
	}
	s.v.Set(key, integralNumbers(value))
	if file := s.v.ConfigFileUsed(); file != "" {
		if err := s.v.WriteConfig(); err != nil {
			return errors.Wrap(err, "write_config_file_error").With("config_path", file)
		}
	}
	s.logger.Info().Str("key", key).Int64("last_modified", config.LastModified).Msg("cache_config_saved")
	return nil
}

// Names lists the cache names present in the store
func (s *CacheStore) Names() []string {
	section, ok := StringMap(s.v.AllSettings()).Child(CachesKey)
	if !ok {
		return nil
	}
	names := make([]string, 0, len(section))
	for name := range section {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Section returns the raw stored map of name, as written in the config source
func (s *CacheStore) Section(name string) (StringMap, bool) {
	raw := s.v.GetStringMap(configKey(name))
	if len(raw) == 0 {
		return nil, false
	}
	return raw, true
}

func (s *CacheStore) decryptPassword(password string) (string, error) {
	encoded, ok := strings.CutPrefix(password, encryptedPrefix)
	if !ok {
		return password, nil
	}
	if s.secret == "" {
		return "", ErrMissingSecret
	}
	return crypto.DecryptString(encoded, s.secret)
}

// integralNumbers turns whole float64 values left by json decoding back into int64,
// so config files keep integers that decode into int fields again.
func integralNumbers(value interface{}) interface{} {
	switch v := value.(type) {
	case float64:
		if v == math.Trunc(v) && math.Abs(v) < 1<<53 {
			return int64(v)
		}
	case map[string]interface{}:
		for key, item := range v {
			v[key] = integralNumbers(item)
		}
	case []interface{}:
		for i, item := range v {
			v[i] = integralNumbers(item)
		}
	}
	return value
}

func configKey(name string) string {
	if name == "" {
		name = cache.DefaultName
	}
	return CachesKey + "." + strings.ToLower(name)
}
