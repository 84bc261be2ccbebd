// Package config reads the process environment and builds the infrastructure the circulation
// service runs on: the ledger store for the selected driver, the cross-handler locker, PostgreSQL
// pools for the three supported drivers and the OpenTelemetry providers.
//
// Variables are read after godotenv has loaded an optional .env file from the working directory.
package config
