package config

import (
	"fmt"
	"sync"
)

// MapConfig serves keys from memory. Used by tests and by callers that
// build configuration programmatically.
type MapConfig struct {
	keys
	values sync.Map
}

func NewMapConfig(entries map[string]string) *MapConfig {
	c := &MapConfig{}
	c.keys = keys{lookup: c.load}

	for key, entry := range entries {
		c.values.Store(key, entry)
	}

	return c
}

func (c *MapConfig) Set(key, value string) {
	c.values.Store(key, value)
}

func (c *MapConfig) LoadFromPath(_ string) error {
	return fmt.Errorf("LoadFromPath not supported for MapConfig")
}

func (c *MapConfig) Load() error {
	return nil
}

func (c *MapConfig) load(key string) string {
	v, ok := c.values.Load(key)
	if !ok || v == nil {
		return ""
	}

	return v.(string)
}
