// MIT License
//
// Copyright 2019 Burst Apps Team
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to
// deal in the Software without restriction, including without limitation the
// rights to use, copy, modify, merge, publish, distribute, sublicense, and/or
// sell copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING
// FROM, OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS
// IN THE SOFTWARE.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/posener/complete"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"

	_log "github.com/burst-apps-team/burstkit/internal/log"
	"github.com/burst-apps-team/burstkit/node"
)

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main(). It only needs to happen once
// to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

var (
	cfgFile string
	Debug   bool

	NodeConfig = node.Config{UserAgent: "burst-cli/" + node.Version}
	Node       *node.Service

	log _log.Log
)

func init() {
	cobra.OnInitialize(initConfig, initNode)
}

var apiFlags = func() *flag.FlagSet {
	flags := flag.NewFlagSet("", flag.ContinueOnError)
	flags.ParseErrorsWhitelist.UnknownFlags = true
	flags.StringVarP(&NodeConfig.Endpoint, "node", "s", node.DefaultEndpoint,
		"scheme://host:port for the Burst node")
	flags.DurationVar(&NodeConfig.Timeout, "timeout", 15*time.Second,
		"Timeout for all API requests (i.e. 10s, 1m)")
	flags.Float64Var(&NodeConfig.RequestsPerSecond, "rps", 0,
		"Maximum requests per second to the node, 0 means unlimited")
	flags.BoolVar(&Debug, "debug", false,
		"Print all requests and responses")
	return flags
}()

// rootCmd represents the base command when called without any subcommands
var rootCmd = func() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "burst-cli",
		Short: "Burst node CLI",
		Long: `burst-cli allows users to explore and interact with the Burst blockchain.

burst-cli can be used to look up blocks, accounts and transactions, follow the
current mining round, generate unsigned transactions, and broadcast signed
transactions.

API Settings

burst-cli needs to be able to query the API of a running Burst node. Use
--node to specify the node endpoint, if not on http://localhost:8125.

Settings may also be given in $HOME/.burst-cli.yaml or as environment
variables prefixed with BURST_CLI_, e.g. BURST_CLI_NODE.`,
		Version: Revision,
		Args:    cobra.ExactArgs(0),
		PreRunE: validateRunCompletionFlags,
		Run:     runCompletion,
	}

	cmd.Flags().AddFlagSet(installCompletionFlags)
	flags := cmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "",
		"config file (default is $HOME/.burst-cli.yaml)")
	// API Flags
	flags.AddFlagSet(apiFlags)
	viper.BindPFlags(apiFlags)

	generateCmplFlags(cmd, rootCmplCmd.Flags)
	return cmd
}()

var rootCmplCmd = complete.Command{
	Flags: mergeFlags(apiCmplFlags, complete.Flags{
		"--version": complete.PredictNothing,
	}),
	Sub: complete.Commands{
		"help": complete.Command{Sub: complete.Commands{}},
	},
}
var apiCmplFlags = complete.Flags{
	"--config": complete.PredictFiles("*.yaml"),
	"--help":   complete.PredictNothing,
}

var installCompletionFlags = func() *flag.FlagSet {
	flags := flag.NewFlagSet("", flag.ContinueOnError)
	flags.Bool("install", false, "Install shell completion for burst-cli")
	flags.Bool("uninstall", false, "Uninstall shell completion for burst-cli")
	flags.Bool("y", false, "Do not prompt for confirmation")
	return flags
}()

func validateRunCompletionFlags(cmd *cobra.Command, _ []string) error {
	// Ensure that the install completion flags are not ever used with any
	// other flags.
	flags := cmd.Flags()
	installCompletionMode := false
	otherFlags := false
	flags.Visit(func(flg *flag.Flag) {
		switch flg.Name {
		case "install", "uninstall", "y":
			installCompletionMode = true
		default:
			otherFlags = true
		}
	})
	if installCompletionMode && otherFlags {
		return fmt.Errorf(
			"--install and --uninstall may not be used with any other flags")
	}
	return nil
}

func runCompletion(cmd *cobra.Command, _ []string) {
	// Complete() returns true if it attempts to install completion,
	// otherwise just output the help page.
	if !Complete() {
		cmd.Help()
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		// Search config in home directory with name ".burst-cli" (without
		// extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".burst-cli")
	}

	viper.SetEnvPrefix("burst_cli")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	// Flags that were not set on the command line take their value from
	// the config file or environment.
	NodeConfig.Endpoint = viper.GetString("node")
	NodeConfig.Timeout = viper.GetDuration("timeout")
	NodeConfig.RequestsPerSecond = viper.GetFloat64("rps")
	Debug = viper.GetBool("debug")
}

// initNode sets up logging and the node.Service used by all sub commands.
func initNode() {
	if Debug {
		_log.Level = logrus.DebugLevel
	}
	log = _log.New("burst-cli")
	NodeConfig.Log = _log.New("node").Entry

	var err error
	if Node, err = node.New(NodeConfig); err != nil {
		log.Fatal(err)
	}
}

// commandContext returns a context that is cancelled on SIGINT.
func commandContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigint := make(chan os.Signal, 1)
	signal.Notify(sigint, os.Interrupt)
	go func() {
		select {
		case <-sigint:
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigint)
	}()
	return ctx, cancel
}

// printJSON prints v as indented JSON.
func printJSON(v interface{}) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(string(data))
}
