package config

import "fmt"

// Config is the generator configuration, decoded from config.yaml by viper.
type Config struct {
	SiteTitle      string `mapstructure:"siteTitle"`
	BaseURL        string `mapstructure:"baseURL"`
	OutputDir      string `mapstructure:"outputDir"`
	ContentDir     string `mapstructure:"contentDir"`
	LayoutsDir     string `mapstructure:"layoutsDir"`
	StaticDir      string `mapstructure:"staticDir"`
	HighlightStyle string `mapstructure:"highlightStyle"`
	HomePosts      int    `mapstructure:"homePosts"`
}

// Default returns the configuration used when no config file is present.
func Default() Config {
	return Config{
		SiteTitle:      "My Blog",
		OutputDir:      "public",
		ContentDir:     "content",
		LayoutsDir:     "layouts",
		StaticDir:      "static",
		HighlightStyle: "github",
		HomePosts:      10,
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.OutputDir == "" {
		return fmt.Errorf("outputDir cannot be empty")
	}
	if c.ContentDir == "" {
		return fmt.Errorf("contentDir cannot be empty")
	}
	if c.LayoutsDir == "" {
		return fmt.Errorf("layoutsDir cannot be empty")
	}
	if c.OutputDir == c.ContentDir || c.OutputDir == c.LayoutsDir || (c.StaticDir != "" && c.OutputDir == c.StaticDir) {
		return fmt.Errorf("outputDir %q collides with a source directory", c.OutputDir)
	}
	if c.HomePosts <= 0 {
		return fmt.Errorf("homePosts must be positive")
	}
	return nil
}
