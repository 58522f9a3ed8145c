// Package logging builds the zap loggers used across the server.
//
// Production mode writes JSON, development mode writes colored console
// output. Subsystems take a *zap.Logger and name themselves:
//
//	logger, err := logging.New(logging.FromSettings("info", false))
//	ctrl := host.New(host.Config{Logger: logger.Component("view")})
package logging
