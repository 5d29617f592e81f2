// Package common holds the configuration and logging setup shared by the
// commands: the Config struct with its validation rules and the logger
// factory that formats the output of every package logger.
package common
