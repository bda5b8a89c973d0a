// Package config handles loading and parsing of configuration from YAML files
// and environment variables. It defines the settings shared by the gateway and
// the two echo fixtures: listen addresses, fixture identities, upstream URLs,
// strategy selection, rate limiting, circuit breaking, and metrics exposure.
package config
