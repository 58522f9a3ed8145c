// Package config loads server settings from the environment and view
// settings from an optional TOML or YAML file named by MCPVIEW_CONFIG.
package config
