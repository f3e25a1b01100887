package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

var log = newLogger(os.Stdout, "info", false)

func newLogger(out io.Writer, level string, jsonFormat bool) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	if jsonFormat {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	lvl, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)
	return l
}

// Configure replaces the package logger. Called once from main after config is loaded.
func Configure(out io.Writer, level string, jsonFormat bool) {
	log = newLogger(out, level, jsonFormat)
}

// L exposes the underlying logger for integrations (gorm, gin) that want an io.Writer or *logrus.Logger.
func L() *logrus.Logger {
	return log
}

type Fields = logrus.Fields

func WithFields(f Fields) *logrus.Entry {
	return log.WithFields(f)
}

func Success(message string) {
	log.WithField("result", "ok").Info(message)
}

func Info(message string) {
	log.Info(message)
}

func Infof(format string, args ...interface{}) {
	log.Infof(format, args...)
}

func Warning(message string) {
	log.Warn(message)
}

func Warnf(format string, args ...interface{}) {
	log.Warnf(format, args...)
}

func Debug(message string) {
	log.Debug(message)
}

func Error(message string, err error) {
	if err != nil {
		log.WithError(err).Error(message)
		return
	}
	log.Error(message)
}

func Fatal(message string, err error) {
	log.WithError(err).Fatal(message)
}
