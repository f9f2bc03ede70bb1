// Package config loads and validates application settings.
//
// Values come from an optional config.yaml in the working directory and
// from TASKMGR_-prefixed environment variables, which take precedence.
// Nested keys map to variables by replacing dots with underscores, so
// auth.jwt_secret is read from TASKMGR_AUTH_JWT_SECRET.
package config
