package config

var configer Configer = NewDotenvConfig("")

// SetConfig replaces the process wide Configer read by the package level
// getters.
func SetConfig(c Configer) {
	configer = c
}

func GetIntKeyWithDefault(key string, defaultValue int) int {
	return configer.GetIntKeyWithDefault(key, defaultValue)
}
