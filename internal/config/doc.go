// Package config provides configuration loading and validation for the
// batch converter. It handles YAML-based configuration with struct
// validation and supplies defaults when no config file is given.
package config
