package config

import (
	"strconv"

	"github.com/apex/log"
)

type Configer interface {
	LoadFromPath(path string) error
	Load() error
	GetKey(key string) string
	MustGetKey(key string) string
	GetKeyWithDefault(key, defaultValue string) string
	GetIntKey(key string) int
	MustGetIntKey(key string) int
	GetIntKeyWithDefault(key string, defaultValue int) int
	GetBoolKeyWithDefault(key string, defaultValue bool) bool
}

// keys implements the typed getters of Configer on top of a raw string
// lookup. Each Configer embeds one wired to its own source.
type keys struct {
	lookup func(key string) string
}

func (k keys) GetKey(key string) string {
	return k.lookup(key)
}

func (k keys) MustGetKey(key string) string {
	val := k.lookup(key)
	if val == "" {
		log.Fatalf("No such required config key: '%s'", key)
	}

	return val
}

func (k keys) GetKeyWithDefault(key, defaultValue string) string {
	if val := k.lookup(key); val != "" {
		return val
	}

	return defaultValue
}

func (k keys) GetIntKey(key string) int {
	return k.GetIntKeyWithDefault(key, 0)
}

func (k keys) MustGetIntKey(key string) int {
	intVal, err := strconv.Atoi(k.lookup(key))
	if err != nil {
		log.Fatalf("Required config key either doesn't exist or isn't an int: '%s': %s", key, err)
	}

	return intVal
}

func (k keys) GetIntKeyWithDefault(key string, defaultValue int) int {
	intVal, err := strconv.Atoi(k.lookup(key))
	if err != nil {
		return defaultValue
	}

	return intVal
}

func (k keys) GetBoolKeyWithDefault(key string, defaultValue bool) bool {
	boolVal, err := strconv.ParseBool(k.lookup(key))
	if err != nil {
		return defaultValue
	}

	return boolVal
}
