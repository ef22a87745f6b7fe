package config

// DefaultConfig returns configuration with sensible defaults.
// These defaults are used when no config file exists or when
// config file is missing specific fields.
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path: ".wikihop/graph.db",
		},
		Server: ServerConfig{
			Addr:                  ":8240",
			RequestTimeoutSeconds: 30,
			Analytics:             boolPtr(true),
		},
		Search: SearchConfig{
			MaxPaths: 0,
		},
	}
}

func boolPtr(b bool) *bool { return &b }

// Merge merges loaded config with defaults.
// Values from loaded config take precedence over defaults.
// Returns a new Config with merged values.
func Merge(loaded, defaults *Config) *Config {
	result := &Config{}

	result.Database = mergeDatabaseConfig(loaded.Database, defaults.Database)
	result.Server = mergeServerConfig(loaded.Server, defaults.Server)
	result.Search = mergeSearchConfig(loaded.Search, defaults.Search)

	return result
}

func mergeDatabaseConfig(loaded, defaults DatabaseConfig) DatabaseConfig {
	result := DatabaseConfig{}

	if loaded.Path != "" {
		result.Path = loaded.Path
	} else {
		result.Path = defaults.Path
	}

	return result
}

func mergeServerConfig(loaded, defaults ServerConfig) ServerConfig {
	result := ServerConfig{}

	if loaded.Addr != "" {
		result.Addr = loaded.Addr
	} else {
		result.Addr = defaults.Addr
	}

	if loaded.RequestTimeoutSeconds != 0 {
		result.RequestTimeoutSeconds = loaded.RequestTimeoutSeconds
	} else {
		result.RequestTimeoutSeconds = defaults.RequestTimeoutSeconds
	}

	if loaded.Analytics != nil {
		result.Analytics = loaded.Analytics
	} else {
		result.Analytics = defaults.Analytics
	}

	return result
}

func mergeSearchConfig(loaded, defaults SearchConfig) SearchConfig {
	result := SearchConfig{}

	if loaded.MaxPaths != 0 {
		result.MaxPaths = loaded.MaxPaths
	} else {
		result.MaxPaths = defaults.MaxPaths
	}

	return result
}
