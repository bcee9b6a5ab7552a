// Package config loads, normalizes, and validates melodicsim configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours the MELODICSIM_DATA_DIR
// environment fallback. Experiment paths that are relative are anchored at
// paths.data_dir so a whole results tree can be moved by changing one value.
//
// Always obtain settings through this package so downstream code receives
// absolute paths, canonical log formats, and clear validation errors.
package config
