package storage

// Config holds configuration for the object storage that keeps state snapshots.
type Config struct {
	// Endpoint is the host of the S3 compatible service.
	Endpoint  string `mapstructure:"endpoint" default:"localhost:9000"`
	AccessKey string `mapstructure:"access_key" default:"minioadmin"`
	SecretKey string `mapstructure:"secret_key" default:"minioadmin"`
	UseSSL    bool   `mapstructure:"use_ssl" default:"false"`
	// Bucket receives the snapshots. It is created on first backup.
	Bucket string `mapstructure:"bucket" default:"watchstate"`
	Region string `mapstructure:"region" default:""`
	// Prefix is prepended to every snapshot object name.
	Prefix string `mapstructure:"prefix" default:"backups/"`
	// Retain is the number of snapshots kept. Zero keeps all of them.
	Retain int `mapstructure:"retain" default:"7"`
	// TimeoutSeconds is the connection timeout in seconds.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}
