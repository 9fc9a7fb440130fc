package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/actstream/internal/models"
	"github.com/mesh-intelligence/actstream/internal/paths"
	"github.com/mesh-intelligence/actstream/pkg/registry"
	"github.com/mesh-intelligence/actstream/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"

	envPrefix = "ACTSTREAM"

	cfgKeyBackend       = "backend"
	cfgKeyDataDir       = "data_dir"
	cfgKeyLogLevel      = "log_level"
	cfgKeyLogFormat     = "log_format"
	cfgKeyInstalledApps = "installed_apps"
	cfgKeyModels        = "actstream.models"
	cfgKeyActionModel   = "actstream.action_model"

	defaultLogLevel  = "info"
	defaultLogFormat = "text"
)

// configFile holds the structure written to config.yaml.
type configFile struct {
	Backend       string          `yaml:"backend"`
	DataDir       string          `yaml:"data_dir,omitempty"`
	LogLevel      string          `yaml:"log_level"`
	LogFormat     string          `yaml:"log_format"`
	InstalledApps []string        `yaml:"installed_apps"`
	Actstream     actstreamConfig `yaml:"actstream"`
}

type actstreamConfig struct {
	Models      []string `yaml:"models"`
	ActionModel string   `yaml:"action_model"`
}

func defaultConfigFile(dataDir string) configFile {
	return configFile{
		Backend:       types.BackendSQLite,
		DataDir:       dataDir,
		LogLevel:      defaultLogLevel,
		LogFormat:     defaultLogFormat,
		InstalledApps: models.DefaultInstalledApps,
		Actstream: actstreamConfig{
			Models:      models.DefaultActionable,
			ActionModel: registry.DefaultActionModel,
		},
	}
}

// settings is the resolved configuration a command runs with.
type settings struct {
	configDir     string
	backend       types.Config
	logLevel      string
	logFormat     string
	installedApps []string
	models        []string
	actionModel   string
}

// loadConfig reads config.yaml from the config directory using Viper.
// A missing config.yaml is not an error; defaults match the file init
// writes. ACTSTREAM_LOG_LEVEL and ACTSTREAM_LOG_FORMAT override file
// values; ACTSTREAM_DATA_DIR is handled by paths.ResolveDataDir, below
// config.
func loadConfig(configDir string) (*viper.Viper, error) {
	v := viper.New()
	def := defaultConfigFile("")
	v.SetDefault(cfgKeyBackend, def.Backend)
	v.SetDefault(cfgKeyLogLevel, def.LogLevel)
	v.SetDefault(cfgKeyLogFormat, def.LogFormat)
	v.SetDefault(cfgKeyInstalledApps, def.InstalledApps)
	v.SetDefault(cfgKeyModels, def.Actstream.Models)
	v.SetDefault(cfgKeyActionModel, def.Actstream.ActionModel)

	v.SetEnvPrefix(envPrefix)
	for _, key := range []string{cfgKeyLogLevel, cfgKeyLogFormat} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return v, nil
}

// resolveSettings applies flag > config > env > default precedence to the
// directories and reads the remaining keys from config.
func resolveSettings(flags *rootFlags) (*settings, error) {
	configDir, err := paths.ResolveConfigDir(flags.configDir)
	if err != nil {
		return nil, fmt.Errorf("resolve config dir: %w", err)
	}
	v, err := loadConfig(configDir)
	if err != nil {
		return nil, err
	}
	dataDir, err := paths.ResolveDataDir(flags.dataDir, v.GetString(cfgKeyDataDir))
	if err != nil {
		return nil, fmt.Errorf("resolve data dir: %w", err)
	}

	s := &settings{
		configDir:     configDir,
		backend:       types.Config{Backend: v.GetString(cfgKeyBackend), DataDir: dataDir},
		logLevel:      v.GetString(cfgKeyLogLevel),
		logFormat:     v.GetString(cfgKeyLogFormat),
		installedApps: v.GetStringSlice(cfgKeyInstalledApps),
		models:        v.GetStringSlice(cfgKeyModels),
		actionModel:   v.GetString(cfgKeyActionModel),
	}
	if flags.logLevel != "" {
		s.logLevel = flags.logLevel
	}
	if err := s.backend.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", cfgKeyBackend, err)
	}
	return s, nil
}

// writeConfigIfMissing creates config.yaml with default values if the file
// does not exist. Returns false when the file was already there.
func writeConfigIfMissing(path, dataDir string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}

	cfg := defaultConfigFile(dataDir)
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return false, fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return false, err
	}
	return true, nil
}
