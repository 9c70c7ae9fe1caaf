package config

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const envPrefix = "EBFTPD"

// ViperConfig reads a YAML or TOML file with environment overrides. Keys are
// asked for in their environment form (EBFTPD_FREE_SPACE) and looked up in
// the file in lower case without the prefix (free_space).
type ViperConfig struct {
	keys
	v    *viper.Viper
	path string
}

func NewViperConfig(path string) *ViperConfig {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	c := &ViperConfig{v: v, path: path}
	c.keys = keys{lookup: c.load}
	return c
}

func (c *ViperConfig) LoadFromPath(path string) error {
	c.path = path
	return c.Load()
}

func (c *ViperConfig) Load() error {
	if c.path == "" {
		return nil
	}

	c.v.SetConfigFile(c.path)
	if err := c.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return err
	}

	return nil
}

func (c *ViperConfig) load(key string) string {
	return c.v.GetString(fileKey(key))
}

func fileKey(key string) string {
	key = strings.TrimPrefix(key, envPrefix+"_")
	return strings.ToLower(key)
}
