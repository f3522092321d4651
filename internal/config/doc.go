// Package config loads, normalizes, and validates sutrasync configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and layers the environment variables the
// original spreadsheet tooling used (API_URL, EMAIL, CSV_INS_WITH_CHAPTER,
// UPANISHADS and friends) on top. A .env file in the working directory is
// honoured the same way.
//
// Always obtain settings through this package so the merge and publish
// pipelines receive sanitized paths, parsed project lists, and clear
// validation errors.
package config
