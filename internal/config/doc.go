// Package config handles YAML configuration loading with environment variable substitution.
//
// Configuration files support ${VAR} syntax for environment variable interpolation.
// Every field has a default, so an empty file (or no file) yields a runnable engine.
package config
