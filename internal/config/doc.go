// Package config loads and fingerprints the docdex.yaml project file.
package config
