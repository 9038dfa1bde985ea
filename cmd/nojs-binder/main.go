package main

import (
	"fmt"
	"os"
)

const appName = "nojs-binder"

var (
	flagConfig  string
	flagVerbose bool
	flagDryRun  bool
)

func main() {
	rootCmd.AddCommand(compileCmd, checkCmd, initCmd)

	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "",
		"config file (default: ./"+appName+".yaml, then ~/.config/"+appName+"/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false,
		"log every compile phase")
	compileCmd.Flags().BoolVar(&flagDryRun, "dry-run", false,
		"print the generated files instead of writing them")

	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err.Error())
		os.Exit(1)
	}
}
