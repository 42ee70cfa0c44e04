package log

import (
	"path/filepath"
	"testing"

	"github.com/mpvtouch/mpvtouch/filesystem"
	"github.com/mpvtouch/mpvtouch/key"
	"github.com/mpvtouch/mpvtouch/where"
	"github.com/samber/lo"
	logrus "github.com/sirupsen/logrus"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func TestSetup(t *testing.T) {
	Convey("Log Setup", t, func() {
		filesystem.SetMemMapFs()

		Convey("Disabled logging writes nothing", func() {
			viper.Set(key.LogsWrite, false)
			So(Setup(), ShouldBeNil)

			Info("dropped")
			So(Component("gesture").Logger.Out, ShouldNotEqual, logrus.StandardLogger().Out)

			files := lo.Must(filesystem.API().ReadDir(where.Logs()))
			So(files, ShouldBeEmpty)
		})

		Convey("Enabled logging creates a daily file", func() {
			viper.Set(key.LogsWrite, true)
			viper.Set(key.LogsLevel, "debug")
			defer viper.Set(key.LogsWrite, false)

			So(Setup(), ShouldBeNil)
			So(logrus.GetLevel(), ShouldEqual, logrus.DebugLevel)

			Component("bridge").Info("hello")
			files := lo.Must(filesystem.API().ReadDir(where.Logs()))
			So(len(files), ShouldEqual, 1)
			So(files[0].Name(), ShouldEqual, filepath.Base(Path()))
		})

		Convey("Unknown levels fall back to info", func() {
			viper.Set(key.LogsWrite, true)
			viper.Set(key.LogsLevel, "loud")
			defer viper.Set(key.LogsWrite, false)

			So(Setup(), ShouldBeNil)
			So(logrus.GetLevel(), ShouldEqual, logrus.InfoLevel)
		})
	})
}
