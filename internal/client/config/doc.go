// Package config loads runtime configuration for the gophtasks CLI.
//
// Sources, in order of precedence (later wins):
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional config file selected with -c or -config. Files ending in
//     .toml are decoded as TOML, anything else as JSON.
//  3. Command-line flags -a, -i and -db.
//
// Example TOML:
//
//	server_endpoint_addr = "127.0.0.1:50051"
//	online_check_interval = "3s"
//	database_file = "gophtasks.db"
package config
