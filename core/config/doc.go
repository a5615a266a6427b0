// Package config loads the application configuration with viper.
//
// Every section is a Config struct owned by its package (log, database,
// storage, server, sync). Defaults come from the default struct tags and every
// key can be overridden from the environment or a .env file:
//
//	LOG_LEVEL=debug
//	DATABASE_DRIVER=mysql
//	SYNC_STRATEGY=direct
//	SYNC_DRY_RUN=true
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
