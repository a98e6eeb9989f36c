package main

import (
	"fmt"
	"log"
	"os"

	"gopkg.in/yaml.v2"

	"github.com/Azdaroth/inkpress/cmd"
)

// loadSiteParams reads the raw config.yaml so templates can reach
// arbitrary site-wide values beyond the typed generator config.
func loadSiteParams(filename string) (map[string]interface{}, error) {
	yamlFile, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]interface{}{}, nil
		}
		return nil, fmt.Errorf("error reading config file %s: %w", filename, err)
	}

	params := make(map[string]interface{})
	if err := yaml.Unmarshal(yamlFile, &params); err != nil {
		return nil, fmt.Errorf("error unmarshalling config file %s: %w", filename, err)
	}
	return params, nil
}

func main() {
	params, err := loadSiteParams("config.yaml")
	if err != nil {
		log.Fatalf("Error loading site configuration: %v", err)
	}
	cmd.Execute(params)
}
