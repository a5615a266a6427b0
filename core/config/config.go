package config

import (
	"fmt"
	"path/filepath"
	"reflect"
	"strings"

	"watchstate/core/database"
	"watchstate/core/logger"
	"watchstate/core/reconcile"
	"watchstate/core/server"
	"watchstate/core/storage"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application, one section per package.
type Config struct {
	Log      logger.Config   `mapstructure:"log"`
	Database database.Config `mapstructure:"database"`
	// Storage is the snapshot bucket.
	Storage storage.Config `mapstructure:"storage"`
	Server  server.Config  `mapstructure:"server"`
	// Sync holds the reconcile options shared by import, export and restore.
	Sync reconcile.Config `mapstructure:"sync"`
}

// LoadConfig loads configuration from the environment, after applying the .env
// file in path when one exists. Keys map to variables by section, so
// sync.dry_run is read from SYNC_DRY_RUN.
func LoadConfig(path string) (*Config, error) {
	envPath := filepath.Join(path, ".env")
	// A missing file is normal in production.
	_ = godotenv.Overload(envPath)

	v := viper.New()
	bindValues(v, Config{}, "")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if _, err := config.Sync.ImportOptions(); err != nil {
		return nil, err
	}
	return &config, nil
}

// bindValues registers every mapstructure key with its default tag value so
// AutomaticEnv can resolve it.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)

	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")

		if tag == "" {
			continue
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		// Empty defaults are set too; unregistered keys are invisible to AutomaticEnv.
		v.SetDefault(key, field.Tag.Get("default"))
	}
}
