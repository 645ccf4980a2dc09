package config

import "time"

// CLIConfig is the configuration for pixmesh-cli.
type CLIConfig struct {
	DefaultServer string        `yaml:"default_server"`
	DefaultOutput string        `yaml:"default_output"` // table, json, yaml
	Timeout       time.Duration `yaml:"timeout"`

	// Servers maps profile names to server addresses.
	Servers map[string]string `yaml:"servers"`
}

// Default returns the default CLI configuration.
func Default() *CLIConfig {
	return &CLIConfig{
		DefaultServer: "http://localhost:8000",
		DefaultOutput: "table",
		Timeout:       30 * time.Second,
		Servers:       make(map[string]string),
	}
}

// Resolve maps a profile name to its address. Anything that is not a
// profile name is returned unchanged; empty selects DefaultServer.
func (c *CLIConfig) Resolve(server string) string {
	if server == "" {
		return c.DefaultServer
	}
	if addr, ok := c.Servers[server]; ok {
		return addr
	}
	return server
}
