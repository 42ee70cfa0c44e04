package where

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mpvtouch/mpvtouch/filesystem"
	"github.com/samber/lo"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Use in-memory filesystem for tests to avoid creating real directories
	filesystem.SetMemMapFs()
}

func TestPaths(t *testing.T) {
	Convey("Path functions", t, func() {
		Convey("Config()", func() {
			path := Config()
			So(path, ShouldNotBeEmpty)
			So(lo.Must(filesystem.API().IsDir(path)), ShouldBeTrue)
		})

		Convey("Config() honours the override", func() {
			lo.Must0(os.Setenv(EnvConfigPath, "/custom/mpvtouch"))
			defer os.Unsetenv(EnvConfigPath)

			So(Config(), ShouldEqual, "/custom/mpvtouch")
			So(ConfigFile(), ShouldEqual, filepath.Join("/custom/mpvtouch", "mpvtouch.toml"))
		})

		Convey("Logs()", func() {
			path := Logs()
			So(path, ShouldNotBeEmpty)
			So(lo.Must(filesystem.API().IsDir(path)), ShouldBeTrue)
		})

		Convey("Socket() lives under Runtime()", func() {
			So(filepath.Dir(Socket()), ShouldEqual, Runtime())
			So(lo.Must(filesystem.API().IsDir(Runtime())), ShouldBeTrue)
		})
	})
}
