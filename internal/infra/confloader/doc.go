// Package confloader provides configuration loading mechanism.
//
// It uses koanf to merge configuration from several sources into one typed
// struct, and fsnotify to report edits to the configuration file.
//
// Priority (highest to lowest):
//
//  1. Overrides (command-line flags)
//  2. Environment variables (PIXMESH_ prefix, "__" between sections)
//  3. Configuration file (YAML)
//  4. Values already present in the target struct (defaults)
package confloader
