package config

import (
	"encoding/json"
	"log"
	"os"

	"github.com/pkg/errors"
)

const DefaultPath = "monitorConfig.json"

type Config struct {
	ImagePath    string `json:"imagePath"`
	ImageFormat  string `json:"imageFormat"` // "raw" or "elf", guessed from the file when empty
	ResetVector  uint32 `json:"resetVector"`
	MemorySize   uint32 `json:"memorySize"`
	RuntimeLimit uint64 `json:"runtimeLimit"` // 0 means unlimited
	Batch        bool   `json:"batch"`
	ListenAddr   string `json:"listenAddr"`
	WebAddr      string `json:"webAddr"`
	HistoryFile  string `json:"historyFile"`
	DebugLog     bool   `json:"debugLog"`
	LogEndpoint  string `json:"logEndpoint"`
}

func Default() *Config {
	return &Config{
		ResetVector: 0x80000000,
		MemorySize:  0x8000000,
		ListenAddr:  ":2035",
		WebAddr:     ":2036",
	}
}

var conf *Config

// Get returns the configuration loaded from DefaultPath, falling back to the
// defaults when the file does not exist. The result is cached.
func Get() *Config {
	if conf == nil {
		c, err := LoadOrDefault(DefaultPath)
		if err != nil {
			log.Fatalln("Error reading "+DefaultPath+":", err)
		}
		conf = c
	}

	return conf
}

// LoadOrDefault is Load, except that a missing file yields the defaults.
// Any other failure, such as a malformed file, is returned.
func LoadOrDefault(path string) (*Config, error) {
	c, err := Load(path)
	if os.IsNotExist(errors.Cause(err)) {
		return Default(), nil
	}
	return c, err
}

// Load reads a JSON configuration file. Fields absent from the file keep
// their default values.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}

	c := Default()
	if err := json.Unmarshal(b, c); err != nil {
		return nil, errors.Wrapf(err, "parse config %s", path)
	}

	return c, nil
}
