package cmd

import (
	"fmt"

	"github.com/mpvtouch/mpvtouch/icon"
	"github.com/mpvtouch/mpvtouch/util"
	"github.com/mpvtouch/mpvtouch/where"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/cobra"
)

// clearTarget defines a filesystem resource eligible for cleanup.
type clearTarget struct {
	name     string
	argLong  string
	argShort mo.Option[string]
	location func() string
}

var clearTargets = []clearTarget{
	{"logs", "logs", mo.Some("l"), where.Logs},
	{"runtime directory", "runtime", mo.Some("r"), where.Runtime},
}

func init() {
	rootCmd.AddCommand(clearCmd)

	for _, target := range clearTargets {
		help := fmt.Sprintf("clear %s", target.name)
		if target.argShort.IsPresent() {
			clearCmd.Flags().BoolP(target.argLong, target.argShort.MustGet(), false, help)
		} else {
			clearCmd.Flags().Bool(target.argLong, false, help)
		}
	}
}

// clearCmd removes logs and stale sockets.
var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear logs and stale runtime files",
	Run: func(cmd *cobra.Command, args []string) {
		var anyCleared bool

		for _, target := range clearTargets {
			if !lo.Must(cmd.Flags().GetBool(target.argLong)) {
				continue
			}
			anyCleared = true
			handleErr(util.Delete(target.location()))
			fmt.Printf("%s %s cleared\n", icon.Get(icon.Success), target.name)
		}

		if !anyCleared {
			handleErr(cmd.Help())
		}
	},
}
