// Package logger provides a structured logging facility based on Zap.
//
// New builds a development configuration for the debug level and a production
// configuration otherwise, with json or console encoding.
//
// # Context Awareness
//
// WithRun tags a logger with a per-run uuid so that every decision logged by one
// import or export run can be correlated. WithRayID does the same for HTTP
// requests using the ray id stored by the rayid middleware.
//
// # Usage
//
//	log, _ := logger.New(&cfg.Log)
//	runLog, runID := logger.WithRun(log, "import")
//	runLog.Info("Import started")
package logger
