package youtubeppt

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

type Config struct {
	// CacheDir holds downloaded videos, deduplicated frame sets, and the
	// cache manifest. Entries are never evicted.
	CacheDir string `mapstructure:"cache_dir"`
	// MSEThreshold is the mean squared error above which a sampled frame
	// starts a new slide.
	MSEThreshold float64 `mapstructure:"mse_threshold"`
	// SampleIntervalSeconds is the spacing between sampled frames.
	SampleIntervalSeconds float64 `mapstructure:"sample_interval_seconds"`
}

func LoadConfig() (*Config, error) {
	var config Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return nil, err
	}
	return &config, nil
}

// DefaultCacheDir places the cache under the user cache directory, falling
// back to a dot directory in the working directory.
func DefaultCacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "youtube-ppt")
	}
	return ".youtube-ppt"
}
