package config

// Config holds everything the client reads once at process start.
type Config struct {
	API     APIConfig
	Server  ServerConfig
	Storage StorageConfig
	Log     LogConfig
}

// APIConfig describes the live backend and how the dispatcher talks to it.
type APIConfig struct {
	BaseURL            string
	RequestTimeoutSecs int
	ProbeTimeoutSecs   int
	// ForceSimulated starts the session in simulated mode without
	// probing the backend.
	ForceSimulated bool
}

// ServerConfig configures the local `universa serve` backend.
type ServerConfig struct {
	Port int
}

// StorageConfig configures the audit log. An empty DataDir keeps the log
// in memory for the life of the process.
type StorageConfig struct {
	DataDir string
}

type LogConfig struct {
	Level string
}

func defaults() Config {
	return Config{
		API: APIConfig{
			BaseURL:            "https://universa-api.onrender.com",
			RequestTimeoutSecs: 10,
			ProbeTimeoutSecs:   5,
			ForceSimulated:     false,
		},
		Server: ServerConfig{
			Port: 8000,
		},
		Storage: StorageConfig{
			DataDir: "",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from the platform-native backend and
// environment variables.
//
// On macOS the backend is UserDefaults (domain: com.universa.client).
// On Linux the backend is a JSON file at
// $XDG_CONFIG_HOME/universa/config.json.
//
// Environment variables (UNIVERSA_*) override backend values on all
// platforms.
func Load() (Config, error) {
	return loadWith(newPlatformBackend())
}

func loadWith(b ConfigBackend) (Config, error) {
	cfg := defaults()
	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}
	applyEnvOverrides(&cfg)
	return cfg, nil
}
