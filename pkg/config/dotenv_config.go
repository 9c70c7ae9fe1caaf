package config

import (
	"os"

	"github.com/mitchellh/go-homedir"
	"github.com/subosito/gotenv"
)

const defaultDotenvPath = "~/.ebftpd/ebftpd.env"

// DotenvConfig loads KEY=value pairs into the process environment and reads
// keys back from it. Variables already set in the environment win.
type DotenvConfig struct {
	keys
	DotenvPath string
}

func NewDotenvConfig(path string) *DotenvConfig {
	return &DotenvConfig{keys: keys{lookup: os.Getenv}, DotenvPath: path}
}

// DefaultDotenvPath returns EBFTPD_DOTENV_PATH when set, otherwise
// ~/.ebftpd/ebftpd.env.
func DefaultDotenvPath() string {
	path := os.Getenv("EBFTPD_DOTENV_PATH")
	if path == "" {
		path = defaultDotenvPath
	}

	expanded, err := homedir.Expand(path)
	if err != nil {
		return path
	}

	return expanded
}

func (c *DotenvConfig) LoadFromPath(path string) error {
	c.DotenvPath = path
	return c.Load()
}

func (c *DotenvConfig) Load() error {
	if c.DotenvPath == "" {
		c.DotenvPath = DefaultDotenvPath()
	}

	return gotenv.Load(c.DotenvPath)
}
