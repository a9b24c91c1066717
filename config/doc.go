// Package config loads container settings from a YAML file, a .env file and
// NASC_* environment variables.
//
// Settings only shape how a container behaves (logging, duplicate handling,
// tracing, boot-time validation); they never register services.
//
//	cfg, err := config.Load(config.WithConfigFile("config.yml"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	container := nasc.New(nasc.WithConfig(cfg))
package config
