package reconcile

// Config is the sync section of the application configuration.
type Config struct {
	Strategy             string `mapstructure:"strategy" default:"buffered"`
	TxMode               string `mapstructure:"tx_mode" default:"single"`
	DryRun               bool   `mapstructure:"dry_run" default:"false"`
	ForceFull            bool   `mapstructure:"force_full" default:"false"`
	IgnoreDate           bool   `mapstructure:"ignore_date" default:"false"`
	AlwaysUpdateMetadata bool   `mapstructure:"always_update_metadata" default:"false"`
	MetadataOnly         bool   `mapstructure:"metadata_only" default:"false"`
	DebugTrace           bool   `mapstructure:"debug_trace" default:"false"`
	// PushWorkers bounds concurrent pushes during export.
	PushWorkers int `mapstructure:"push_workers" default:"4"`
	// LastSync is the epoch of the previous successful import. Zero means never.
	// It is set by the operator; a clean import run logs the value to use next.
	LastSync int64 `mapstructure:"last_sync" default:"0"`
}

// ImportOptions converts the section into importer options.
func (c Config) ImportOptions() (Options, error) {
	strategy, err := ParseStrategy(c.Strategy)
	if err != nil {
		return Options{}, err
	}
	mode, err := ParseTxMode(c.TxMode)
	if err != nil {
		return Options{}, err
	}
	opts := Options{
		Strategy:             strategy,
		TxMode:               mode,
		DryRun:               c.DryRun,
		AlwaysUpdateMetadata: c.AlwaysUpdateMetadata,
		MetadataOnly:         c.MetadataOnly,
		DebugTrace:           c.DebugTrace,
	}
	return opts, opts.Validate()
}

// ExportOptions converts the section into exporter options.
func (c Config) ExportOptions() ExportOptions {
	return ExportOptions{IgnoreDate: c.IgnoreDate, DebugTrace: c.DebugTrace}
}

// Cutoff returns the import cutoff for this configuration.
func (c Config) Cutoff() int64 {
	return Cutoff(c.LastSync, c.ForceFull)
}
