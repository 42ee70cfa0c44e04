package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/AlecAivazis/survey/v2"
	levenshtein "github.com/ka-weihe/fast-levenshtein"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/mpvtouch/mpvtouch/config"
	"github.com/mpvtouch/mpvtouch/filesystem"
	"github.com/mpvtouch/mpvtouch/icon"
	"github.com/mpvtouch/mpvtouch/style"
	"github.com/mpvtouch/mpvtouch/where"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func errUnknownKey(key string) error {
	msg := fmt.Sprintf(
		"unknown key %s, did you mean %s?",
		style.Fg(style.Red)(key),
		style.Fg(style.Yellow)(closestKey(key)),
	)

	return errors.New(msg)
}

func closestKey(key string) string {
	return lo.MinBy(lo.Keys(config.Default), func(a string, b string) bool {
		return levenshtein.Distance(key, a) < levenshtein.Distance(key, b)
	})
}

// searchFields returns the fields whose key or description fuzzily contains term.
func searchFields(term string) []config.Field {
	return lo.Filter(lo.Values(config.Default), func(f config.Field, _ int) bool {
		return fuzzy.MatchFold(term, f.Key) || fuzzy.MatchFold(term, f.Description)
	})
}

// parseValue converts command line arguments into the type of key's default.
func parseValue(key string, value []string) (any, error) {
	field, ok := config.Default[key]
	if !ok {
		return nil, errUnknownKey(key)
	}
	if len(value) == 0 {
		return nil, errors.New("value is required")
	}

	switch field.Value.(type) {
	case string:
		return value[0], nil
	case int:
		parsed, err := strconv.Atoi(value[0])
		if err != nil {
			return nil, fmt.Errorf("invalid integer value: %s", value[0])
		}
		return parsed, nil
	case float64:
		parsed, err := strconv.ParseFloat(value[0], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number value: %s", value[0])
		}
		return parsed, nil
	case bool:
		parsed, err := strconv.ParseBool(value[0])
		if err != nil {
			return nil, fmt.Errorf("invalid boolean value: %s", value[0])
		}
		return parsed, nil
	case []string:
		return value, nil
	default:
		return nil, fmt.Errorf("unsupported type for %s", key)
	}
}

func writeConfig() {
	switch err := viper.WriteConfig(); err.(type) {
	case viper.ConfigFileNotFoundError:
		handleErr(viper.SafeWriteConfig())
	default:
		handleErr(err)
	}
}

func confirm(message string, cmd *cobra.Command) bool {
	if lo.Must(cmd.Flags().GetBool("yes")) {
		return true
	}

	var response bool
	handleErr(survey.AskOne(&survey.Confirm{Message: message, Default: false}, &response))
	return response
}

func completionConfigKeys(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return lo.Keys(config.Default), cobra.ShellCompDirectiveNoFileComp
}

func init() {
	rootCmd.AddCommand(configCmd)
}

// configCmd serves as the parent command for managing application configuration.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage gesture, player and server settings",
}

func init() {
	configCmd.AddCommand(configInfoCmd)
	configInfoCmd.Flags().StringSliceP("key", "k", []string{}, "Specify the configuration keys to retrieve information for")
	configInfoCmd.Flags().StringP("search", "s", "", "Fuzzy search keys and descriptions")
	configInfoCmd.Flags().BoolP("json", "j", false, "Format the output as a JSON string")
	configInfoCmd.MarkFlagsMutuallyExclusive("key", "search")
	_ = configInfoCmd.RegisterFlagCompletionFunc("key", completionConfigKeys)

	configInfoCmd.SetOut(os.Stdout)
}

// configInfoCmd displays metadata and descriptions for configuration fields.
var configInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Display detailed information and descriptions for configuration fields",
	Run: func(cmd *cobra.Command, args []string) {
		var (
			keys   = lo.Must(cmd.Flags().GetStringSlice("key"))
			search = lo.Must(cmd.Flags().GetString("search"))
			asJson = lo.Must(cmd.Flags().GetBool("json"))
			fields = lo.Values(config.Default)
		)

		switch {
		case len(keys) > 0:
			fields = make([]config.Field, 0, len(keys))
			for _, key := range keys {
				if _, ok := config.Default[key]; !ok {
					handleErr(errUnknownKey(key))
				}
				fields = append(fields, config.Default[key])
			}
		case search != "":
			fields = searchFields(search)
			if len(fields) == 0 {
				handleErr(fmt.Errorf("nothing matches %q", search))
			}
		}

		sort.Slice(fields, func(i, j int) bool {
			return fields[i].Key < fields[j].Key
		})

		if asJson {
			encoder := json.NewEncoder(cmd.OutOrStdout())
			lo.Must0(encoder.Encode(fields))
			return
		}

		for i, field := range fields {
			cmd.Print(field.Pretty())

			if i < len(fields)-1 {
				cmd.Println()
				cmd.Println()
			}
		}
		cmd.Println()
	},
}

func init() {
	configCmd.AddCommand(configSetCmd)
}

// configSetCmd updates the value of a specific configuration key.
var configSetCmd = &cobra.Command{
	Use:               "set [key] [value]",
	Short:             "Update the value of a configuration key",
	Args:              cobra.MinimumNArgs(2),
	ValidArgsFunction: completionConfigKeys,
	Run: func(cmd *cobra.Command, args []string) {
		key := args[0]
		v, err := parseValue(key, args[1:])
		handleErr(err)

		viper.Set(key, v)
		writeConfig()

		fmt.Printf(
			"%s set %s to %s\n",
			style.Fg(style.Green)(icon.Get(icon.Success)),
			style.Fg(style.Purple)(key),
			style.Fg(style.Yellow)(fmt.Sprintf("%v", v)),
		)
	},
}

func init() {
	configCmd.AddCommand(configGetCmd)
}

// configGetCmd retrieves the current value of a configuration key.
var configGetCmd = &cobra.Command{
	Use:               "get [key]",
	Short:             "Retrieve the current value of a configuration key",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completionConfigKeys,
	Run: func(cmd *cobra.Command, args []string) {
		key := args[0]
		if _, ok := config.Default[key]; !ok {
			handleErr(errUnknownKey(key))
		}

		fmt.Println(viper.Get(key))
	},
}

func init() {
	configCmd.AddCommand(configWriteCmd)
	configWriteCmd.Flags().BoolP("force", "f", false, "Overwrite the existing configuration file")
}

// configWriteCmd serializes the current in-memory configuration to disk.
var configWriteCmd = &cobra.Command{
	Use:   "write",
	Short: "Write the current configuration to the config file",
	Run: func(cmd *cobra.Command, args []string) {
		path := where.ConfigFile()

		if lo.Must(cmd.Flags().GetBool("force")) {
			if exists := lo.Must(filesystem.API().Exists(path)); exists {
				handleErr(filesystem.API().Remove(path))
			}
		}

		handleErr(viper.SafeWriteConfig())
		fmt.Printf(
			"%s wrote config to %s\n",
			style.Fg(style.Green)(icon.Get(icon.Success)),
			path,
		)
	},
}

func init() {
	configCmd.AddCommand(configDeleteCmd)
	configDeleteCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
}

// configDeleteCmd removes the configuration file.
var configDeleteCmd = &cobra.Command{
	Use:     "delete",
	Short:   "Remove the configuration file",
	Aliases: []string{"remove"},
	Run: func(cmd *cobra.Command, args []string) {
		if !confirm("Delete "+where.ConfigFile()+"?", cmd) {
			return
		}

		handleErr(filesystem.API().Remove(where.ConfigFile()))
		fmt.Printf(
			"%s deleted config\n",
			style.Fg(style.Green)(icon.Get(icon.Success)),
		)
	},
}

func init() {
	configCmd.AddCommand(configResetCmd)

	configResetCmd.Flags().StringP("key", "k", "", "The configuration key to restore to its default value")
	configResetCmd.Flags().BoolP("all", "a", false, "Restore every setting to its default")
	configResetCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
	configResetCmd.MarkFlagsMutuallyExclusive("key", "all")
	_ = configResetCmd.RegisterFlagCompletionFunc("key", completionConfigKeys)
}

// configResetCmd restores configuration keys to their default values.
var configResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore a configuration key to its default value",
	PreRun: func(cmd *cobra.Command, args []string) {
		if !cmd.Flags().Changed("key") && !cmd.Flags().Changed("all") {
			handleErr(fmt.Errorf("either --key or --all must be set"))
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		var (
			key = lo.Must(cmd.Flags().GetString("key"))
			all = lo.Must(cmd.Flags().GetBool("all"))
		)

		if all {
			if !confirm("Reset every setting to its default?", cmd) {
				return
			}
			for key, field := range config.Default {
				viper.Set(key, field.Value)
			}
		} else if _, ok := config.Default[key]; !ok {
			handleErr(errUnknownKey(key))
		} else {
			viper.Set(key, config.Default[key].Value)
		}

		writeConfig()

		if all {
			fmt.Printf(
				"%s reset all config values\n",
				style.Fg(style.Green)(icon.Get(icon.Success)),
			)
		} else {
			fmt.Printf(
				"%s reset %s to default value %s\n",
				style.Fg(style.Green)(icon.Get(icon.Success)),
				style.Fg(style.Purple)(key),
				style.Fg(style.Yellow)(fmt.Sprintf("%v", config.Default[key].Value)),
			)
		}
	},
}
