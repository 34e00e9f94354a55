package config

import "sync"

var (
	globalConfig  *Config
	configMu       sync.RWMutex
	initOnce sync.Once
)

// Initialize loads path with environment overrides into the process
// configuration. Only the first call loads; later calls return nil.
func Initialize(path string) error {
	var err error
	initOnce.Do(func() {
		var cfg *Config
		if cfg, err = LoadConfigWithEnvOverrides(path); err == nil {
			Replace(cfg)
		}
	})
	return err
}

// GetConfig returns the process configuration, or nil before Initialize.
func GetConfig() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}

// Replace swaps the process configuration and returns the previous one.
// The reload path calls it after the new file has validated.
func Replace(cfg *Config) *Config {
	configMu.Lock()
	defer configMu.Unlock()
	prev := globalConfig
	globalConfig = cfg
	return prev
}
