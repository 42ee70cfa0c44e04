package cmd

import (
	"encoding/json"
	"os"

	"github.com/invopop/jsonschema"
	"github.com/mpvtouch/mpvtouch/input"
	"github.com/mpvtouch/mpvtouch/overlay"
	"github.com/mpvtouch/mpvtouch/server"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(schemaCmd)

	schemaCmd.Flags().BoolP("overlay", "o", false, "Print the schemas of overlay messages sent to clients")
}

// schemaCmd prints JSON schemas of the websocket protocol.
var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON schemas of the remote surface protocol",
	Run: func(cmd *cobra.Command, args []string) {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")

		if lo.Must(cmd.Flags().GetBool("overlay")) {
			handleErr(encoder.Encode(overlaySchemas()))
			return
		}
		handleErr(encoder.Encode(inboundSchemas()))
	},
}

func reflector() *jsonschema.Reflector {
	r := new(jsonschema.Reflector)
	r.Anonymous = true
	r.DoNotReference = true
	return r
}

func inboundSchemas() map[string]*jsonschema.Schema {
	r := reflector()
	return map[string]*jsonschema.Schema{
		"touch":      r.Reflect(&input.RemoteFrame{}),
		"lock":       r.Reflect(&server.LockMessage{}),
		"frame_step": r.Reflect(&server.FrameStepMessage{}),
	}
}

// overlaySchemas describes the data payload of every overlay update kind.
func overlaySchemas() map[string]*jsonschema.Schema {
	r := reflector()
	return lo.SliceToMap([]overlay.Update{
		overlay.Seek{},
		overlay.Slider{},
		overlay.Speed{},
		overlay.Zoom{},
		overlay.Controls{},
		overlay.Collapse{},
		overlay.Haptic{},
	}, func(u overlay.Update) (string, *jsonschema.Schema) {
		return u.Kind(), r.Reflect(u)
	})
}
