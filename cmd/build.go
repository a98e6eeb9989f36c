package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Azdaroth/inkpress/internal/build"
)

// buildCmd represents the build command
var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Builds the static site from content, layouts, and static assets",
	Long: `The build command processes Markdown files from the content directory,
extracts front-matter, applies layouts (including partials), copies static
assets, and generates the site in the configured output directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return build.New(appConfig, siteParams, logg).Run()
	},
}

func init() {
	rootCmd.AddCommand(buildCmd)
}
