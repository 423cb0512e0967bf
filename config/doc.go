// Package config provides configuration loading for bloom services: a viper
// based loader that layers config.yml, .env files, and process environment
// variables, plus the ServiceConfig base struct that service configs embed.
package config
