// Package main is the entry point for mpvtouch.
package main

import (
	"github.com/mpvtouch/mpvtouch/cmd"
	"github.com/mpvtouch/mpvtouch/config"
	"github.com/mpvtouch/mpvtouch/log"
	"github.com/samber/lo"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())

	cmd.Execute()
}
