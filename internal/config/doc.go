// Package config defines the format-agnostic model for job files and the
// interfaces a configuration frontend must implement. The HCL frontend in
// internal/hcl is currently the only implementation.
package config
