// Package logging provides structured logging for the camscan tools.
//
// This package wraps zap logger with convenience functions for common logging
// patterns used throughout the discovery and metadata pipelines. Logging is
// silent by default so CLI output stays clean; set CAMSCAN_LOG_LEVEL to turn
// it on.
//
// # Log Levels
//
// The package supports standard log levels:
//   - Debug: Detailed debugging info (raw datagrams, SOAP envelopes)
//   - Info: Normal operations (probe sent, device found, session state)
//   - Warn: Non-fatal issues (unparsable responses, per-device failures)
//   - Error: Fatal issues (socket setup failures)
//
// # Structured Logging
//
// All log functions use structured fields for queryability:
//
//	logging.Info("Device found",
//	    zap.String("address", "192.168.1.100"),
//	    zap.String("manufacturer", "Hikvision"),
//	)
//
// # Configuration
//
// Initialize logging at startup:
//
//	if err := logging.InitializeFromEnv(); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
// # Thread Safety
//
// All logging functions are safe for concurrent use. The underlying zap logger
// handles synchronization automatically.
package logging
