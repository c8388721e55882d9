// Package config handles configuration loading and merging for unit.
//
// # Configuration Precedence
//
// Configuration values are resolved in the following order (highest to lowest priority):
//
//  1. CLI flags (-no-color, -quiet, -passing, -log, etc.)
//  2. Environment variables (UNIT_NO_COLOR, NO_COLOR, UNIT_DEBUG, UNIT_LOG)
//  3. YAML config file (.unit.yaml in the working directory or $XDG_CONFIG_HOME/unit/.unit.yaml)
//  4. Hardcoded defaults
//
// When a higher-priority source sets a value, it overrides any lower-priority values.
//
// # Color
//
// Color defaults to on when stdout is a terminal and off otherwise. Any
// explicit setting from the sources above wins over the terminal check.
//
// # Environment Variables
//
//   - UNIT_NO_COLOR or NO_COLOR: Set to "true" or "1" to disable colors
//   - UNIT_DEBUG: Set to any non-empty value to enable debug output
//   - UNIT_LOG: Path of the report log file
package config
