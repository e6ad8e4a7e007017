package logger

import (
	"go.uber.org/zap"
)

// Init builds the global zap logger and installs it so callers can use
// zap.S() anywhere. In development mode the output is human-readable console
// encoding; otherwise JSON.
func Init(development bool) (*zap.Logger, error) {
	var (
		log *zap.Logger
		err error
	)
	if development {
		log, err = zap.NewDevelopment()
	} else {
		log, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(log)
	return log, nil
}
