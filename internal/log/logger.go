package log

import (
	"go.uber.org/zap"
)

// Init builds the process logger and installs it as zap's global logger.
func Init(production bool) (*zap.Logger, error) {
	var (
		l   *zap.Logger
		err error
	)
	if production {
		l, err = zap.NewProduction()
	} else {
		l, err = zap.NewDevelopment()
	}
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(l)
	return l, nil
}

func Infof(format string, args ...any)  { zap.S().Infof(format, args...) }
func Errorf(format string, args ...any) { zap.S().Errorf(format, args...) }
