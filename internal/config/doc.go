// Package config loads the service configuration from YAML.
//
// ${VAR} references are expanded from the environment before parsing. Unset
// optional fields take the Default* values; Validate reports the first
// invalid field by its dotted YAML path.
package config
