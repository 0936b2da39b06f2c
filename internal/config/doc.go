// Package config handles configuration loading for fleetdeck.
//
// # Overview
//
// Configuration is loaded from YAML or TOML files with environment variable
// expansion. The package provides validation and sensible defaults.
//
// # Configuration File
//
// Default locations (in order):
//
//  1. Path from FLEETDECK_CONFIG environment variable
//  2. $XDG_CONFIG_HOME/fleetdeck/config.yaml
//  3. ~/.config/fleetdeck/config.yaml
//
// Files ending in .toml are parsed as TOML; everything else as YAML.
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	server:
//	  token: "${FLEETDECK_TOKEN}"
//
// Syntax: ${VAR_NAME}
//
// # Duration Parsing
//
// Duration values use Go's time.ParseDuration syntax:
//
//	poll:
//	  intervals:
//	    agents: "5s"
//	    tasks: "3s"
//	reconnect:
//	  base_delay: "1s"
//	  max_delay: "5s"
//
// Supported units: ns, us, ms, s, m, h
//
// # Configuration Sections
//
// Server endpoints:
//
//	server:
//	  base_url: "http://localhost:8000"             # REST API root
//	  stream_url: "ws://localhost:8000/ws/events"   # Push event stream
//	  token: "${FLEETDECK_TOKEN}"                   # Optional bearer token
//
// Polling cadence (resources absent from the map are not polled):
//
//	poll:
//	  intervals:
//	    agents: "5s"
//	    tasks: "3s"
//	    events: "10s"
//	    health: "10s"
//
// Reconnect policy:
//
//	reconnect:
//	  max_attempts: 5
//	  base_delay: "1s"
//	  max_delay: "5s"
//
// Logging:
//
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
//
// # Validation
//
// Load() validates:
//
//   - base_url presence and http/https scheme
//   - stream_url presence and ws/wss scheme
//   - Duration format validity
//   - Non-negative reconnect attempt budget
//
// # Usage
//
// Load configuration:
//
//	cfg, err := config.Load("~/.config/fleetdeck/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
