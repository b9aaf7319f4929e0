package config

import (
	"fmt"
	"strings"

	"github.com/de-tools/edw-harness/pkg/models/domain"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

const EnvPrefix = "EDW"

type Config struct {
	Edw    EdwConfig    `mapstructure:"edw"`
	Client ClientConfig `mapstructure:"client"`
	Store  StoreConfig  `mapstructure:"store"`
	Log    LogConfig    `mapstructure:"log"`
}

type EdwConfig struct {
	Cloud              string             `mapstructure:"cloud"`
	ServiceType        string             `mapstructure:"service_type"`
	Connection         string             `mapstructure:"connection"`
	ConfigOverrideFile string             `mapstructure:"config_override_file"`
	WarehouseID        string             `mapstructure:"warehouse_id"`
	Provisioning       ProvisioningConfig `mapstructure:"provisioning"`
}

type ProvisioningConfig struct {
	Name           string `mapstructure:"name"`
	ClusterSize    string `mapstructure:"cluster_size"`
	MinNumClusters int    `mapstructure:"min_num_clusters"`
	MaxNumClusters int    `mapstructure:"max_num_clusters"`
	AutoStopMins   int    `mapstructure:"auto_stop_mins"`
}

type ClientConfig struct {
	Benchmark string            `mapstructure:"benchmark"`
	Shell     string            `mapstructure:"shell"`
	Packages  map[string]string `mapstructure:"packages"`
}

type StoreConfig struct {
	DbPath    string          `mapstructure:"db_path"`
	Artifacts ArtifactsConfig `mapstructure:"artifacts"`
}

type ArtifactsConfig struct {
	Backend    string `mapstructure:"backend"`
	Bucket     string `mapstructure:"bucket"`
	Prefix     string `mapstructure:"prefix"`
	Profile    string `mapstructure:"profile"`
	Region     string `mapstructure:"region"`
	AccountURL string `mapstructure:"account_url"`

	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("edw.cloud", string(domain.CloudAWS))
	v.SetDefault("edw.service_type", "")
	v.SetDefault("edw.connection", "")
	v.SetDefault("edw.config_override_file", "")
	v.SetDefault("edw.warehouse_id", "")
	v.SetDefault("client.benchmark", "")
	v.SetDefault("client.shell", "sh")
	v.SetDefault("store.db_path", "edw-harness.db")
	v.SetDefault("store.artifacts.backend", "s3")
	v.SetDefault("store.artifacts.bucket", "")
	v.SetDefault("store.artifacts.prefix", "")
	v.SetDefault("store.artifacts.profile", "")
	v.SetDefault("store.artifacts.region", "")
	v.SetDefault("store.artifacts.account_url", "")
	v.SetDefault("store.artifacts.endpoint", "")
	v.SetDefault("store.artifacts.access_key_id", "")
	v.SetDefault("store.artifacts.secret_access_key", "")
	v.SetDefault("store.artifacts.use_ssl", true)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// LoadConfig reads the harness file at path, if any, and applies EDW_* environment overrides.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(ExpandHome(path))
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse harness config: %w", err)
	}
	return &cfg, nil
}

func (c EdwConfig) ToSpec() domain.ResourceSpec {
	return domain.ResourceSpec{
		Cloud:              domain.CloudProvider(c.Cloud),
		ServiceType:        domain.ServiceType(c.ServiceType),
		Connection:         c.Connection,
		ConfigOverrideFile: c.ConfigOverrideFile,
		WarehouseID:        c.WarehouseID,
		Provisioning: domain.ProvisioningSettings{
			Name:           c.Provisioning.Name,
			ClusterSize:    c.Provisioning.ClusterSize,
			MinNumClusters: c.Provisioning.MinNumClusters,
			MaxNumClusters: c.Provisioning.MaxNumClusters,
			AutoStopMins:   c.Provisioning.AutoStopMins,
		},
	}
}

// ZerologLevel falls back to info on an unknown level name.
func (c LogConfig) ZerologLevel() zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(c.Level))
	if err != nil || c.Level == "" {
		return zerolog.InfoLevel
	}
	return lvl
}
