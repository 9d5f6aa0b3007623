// Package file provides TOML-backed configuration for Recall, with
// optional hot reload via filesystem notifications.
package file
