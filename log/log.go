// Package log writes structured daemon logs to a daily file under where.Logs().
package log

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/mpvtouch/mpvtouch/filesystem"
	"github.com/mpvtouch/mpvtouch/key"
	"github.com/mpvtouch/mpvtouch/where"
	"github.com/samber/lo"
	logrus "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

var (
	enabled bool
	discard = &logrus.Logger{Out: io.Discard, Formatter: new(logrus.TextFormatter), Hooks: make(logrus.LevelHooks), Level: logrus.PanicLevel}
)

// Path returns the file today's entries go to.
func Path() string {
	return filepath.Join(where.Logs(), time.Now().Format("2006-01-02")+".log")
}

// Setup opens today's log file and applies the configured format and level.
// When logs.write is off every emission below is a no-op.
func Setup() error {
	enabled = viper.GetBool(key.LogsWrite)
	if !enabled {
		return nil
	}

	if where.Logs() == "" {
		return errors.New("log directory path is empty")
	}

	path := Path()
	if !lo.Must(filesystem.API().Exists(path)) {
		lo.Must(filesystem.API().Create(path))
	}

	f, err := filesystem.API().OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o666)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	logrus.SetOutput(f)

	logrus.SetFormatter(lo.Ternary[logrus.Formatter](
		viper.GetBool(key.LogsJson),
		&logrus.JSONFormatter{},
		&logrus.TextFormatter{DisableColors: true, FullTimestamp: true},
	))

	level, err := logrus.ParseLevel(viper.GetString(key.LogsLevel))
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	return nil
}

// Component returns an entry tagged with the subsystem name.
// Touch frames arrive at display rate, so hot paths should stay at Debug or below.
func Component(name string) *logrus.Entry {
	if !enabled {
		return logrus.NewEntry(discard)
	}
	return logrus.WithField("component", name)
}

func std() *logrus.Entry {
	return Component("mpvtouch")
}

func Error(args ...any)                 { std().Error(args...) }
func Errorf(format string, args ...any) { std().Errorf(format, args...) }
func Warn(args ...any)                  { std().Warn(args...) }
func Warnf(format string, args ...any)  { std().Warnf(format, args...) }
func Info(args ...any)                  { std().Info(args...) }
func Infof(format string, args ...any)  { std().Infof(format, args...) }
func Debug(args ...any)                 { std().Debug(args...) }
func Debugf(format string, args ...any) { std().Debugf(format, args...) }
