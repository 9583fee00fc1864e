package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// ToolLink is one external operations tool the console deep-links to.
// These services are never queried for data, only linked.
type ToolLink struct {
	Name        string `toml:"name" json:"name"`
	URL         string `toml:"url" json:"url"`
	Description string `toml:"description" json:"description"`
}

// ToolLinks is the set of external tool links, keyed by purpose.
type ToolLinks struct {
	MetricsDashboard  ToolLink   `toml:"metrics_dashboard" json:"metrics_dashboard"`
	TimeSeriesConsole ToolLink   `toml:"timeseries_console" json:"timeseries_console"`
	SIPCapture        ToolLink   `toml:"sip_capture" json:"sip_capture"`
	Extra             []ToolLink `toml:"extra" json:"extra,omitempty"`
}

// LoadToolLinks parses the TOML tool-links file.
func LoadToolLinks(path string) (ToolLinks, error) {
	var links ToolLinks

	data, err := os.ReadFile(path)
	if err != nil {
		return links, fmt.Errorf("failed to read tools file: %w", err)
	}

	if err := toml.Unmarshal(data, &links); err != nil {
		return links, fmt.Errorf("failed to parse tools file: %w", err)
	}
	return links, nil
}
