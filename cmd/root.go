package cmd

import (
	"fmt"
	"os"
	"strings"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Azdaroth/inkpress/internal/config"
	"github.com/Azdaroth/inkpress/internal/logger"
)

var (
	cfgFile    string
	verbose    bool
	appConfig  config.Config
	siteParams map[string]interface{}
	logg       *logger.Logger
)

var rootCmd = &cobra.Command{
	Use:   "inkpress",
	Short: "inkpress - a static blog generator",
	Long: `inkpress takes your Markdown posts and pages, extracts their
front-matter, renders them through HTML layouts and generates a static
site ready to host anywhere.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initializeConfig(cmd)
	},
}

// Execute runs the root command with the site parameters loaded by main.
func Execute(params map[string]interface{}) {
	siteParams = params
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func initializeConfig(_ *cobra.Command) error {
	level := charmlog.InfoLevel
	if verbose {
		level = charmlog.DebugLevel
	}
	logg = logger.NewWithLevel(os.Stderr, level)

	v := viper.New()

	defaults := config.Default()
	v.SetDefault("siteTitle", defaults.SiteTitle)
	v.SetDefault("baseURL", defaults.BaseURL)
	v.SetDefault("outputDir", defaults.OutputDir)
	v.SetDefault("contentDir", defaults.ContentDir)
	v.SetDefault("layoutsDir", defaults.LayoutsDir)
	v.SetDefault("staticDir", defaults.StaticDir)
	v.SetDefault("highlightStyle", defaults.HighlightStyle)
	v.SetDefault("homePosts", defaults.HomePosts)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("INKPRESS")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			if cfgFile != "" {
				return fmt.Errorf("config file %s not found: %w", cfgFile, err)
			}
			logg.Debug("no config file found, using defaults and environment")
		} else {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		logg.Debug("using config file", "file", v.ConfigFileUsed())
	}

	if err := v.Unmarshal(&appConfig); err != nil {
		return fmt.Errorf("unable to decode config into struct: %w", err)
	}
	if err := appConfig.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	return nil
}
