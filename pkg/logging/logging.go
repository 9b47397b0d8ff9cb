package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

// New builds the process-wide JSON logger. Level is relaxed outside prod so
// dev runs show batch progress.
func New(appEnv string) *logrus.Logger {
	logg := logrus.New()
	logg.SetFormatter(&logrus.JSONFormatter{})
	logg.SetOutput(os.Stdout)
	if appEnv == "prod" {
		logg.SetLevel(logrus.InfoLevel)
	} else {
		logg.SetLevel(logrus.DebugLevel)
	}
	return logg
}

func LogError(logger *logrus.Logger, module string, funcName string, data any, err error) {
	if data != nil {
		logger.WithFields(logrus.Fields{
			"module":   module,
			"funcName": funcName,
			"data":     data,
		}).Error(err.Error())
		return
	}
	logger.WithFields(logrus.Fields{
		"module":   module,
		"funcName": funcName,
	}).Error(err.Error())
}
