package main

import (
	"fmt"

	"github.com/posener/complete"
	"github.com/spf13/cobra"

	"github.com/burst-apps-team/burstkit/api"
	"github.com/burst-apps-team/burstkit/node"
)

var DaemonClient = api.NewClient()

// daemonCmd represents the daemon command
var daemonCmd = func() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "daemon",
		Aliases: []string{"burstkitd"},
		Short:   "status|transactions",
		Long: `
Query a running burstkitd for its sync status and the transactions of the
accounts it watches.

Use --burstkitd to specify the burstkitd endpoint, if not on
http://localhost:8126.
`[1:],
	}
	flags := cmd.PersistentFlags()
	flags.StringVarP(&DaemonClient.BurstkitdServer, "burstkitd", "d",
		api.BurstkitdDefault, "scheme://host:port for burstkitd")
	flags.StringVar(&DaemonClient.User, "burstkitduser", "",
		"Username for API connections to burstkitd")
	flags.StringVar(&DaemonClient.Password, "burstkitdpassword", "",
		"Password for API connections to burstkitd")
	rootCmd.AddCommand(cmd)
	rootCmplCmd.Sub["daemon"] = daemonCmplCmd
	rootCmplCmd.Sub["help"].Sub["daemon"] = complete.Command{
		Sub: complete.Commands{}}
	generateCmplFlags(cmd, daemonCmplCmd.Flags)
	return cmd
}()

var daemonCmplCmd = complete.Command{
	Flags: mergeFlags(apiCmplFlags),
	Sub:   complete.Commands{},
}

func initDaemonClient(_ *cobra.Command, _ []string) {
	DaemonClient.DebugRequest = Debug
	DaemonClient.Timeout = NodeConfig.Timeout
}

// daemonStatusCmd represents the status command
var daemonStatusCmd = func() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "status",
		Aliases: []string{"properties"},
		Short:   "Get the sync status and properties of burstkitd",
		Args:    cobra.ExactArgs(0),
		PreRun:  initDaemonClient,
		Run:     daemonStatus,
	}
	daemonCmd.AddCommand(cmd)
	daemonCmplCmd.Sub["status"] = daemonStatusCmplCmd
	rootCmplCmd.Sub["help"].Sub["daemon"].Sub["status"] = complete.Command{}
	generateCmplFlags(cmd, daemonStatusCmplCmd.Flags)
	return cmd
}()

var daemonStatusCmplCmd = complete.Command{
	Flags: mergeFlags(apiCmplFlags),
}

func daemonStatus(_ *cobra.Command, _ []string) {
	var properties api.ResultGetDaemonProperties
	if err := DaemonClient.Request("get-daemon-properties", nil,
		&properties); err != nil {
		log.Fatal(err)
	}
	var status api.ResultGetSyncStatus
	if err := DaemonClient.Request("get-sync-status", nil,
		&status); err != nil {
		log.Fatal(err)
	}
	fmt.Println("burstkitd version:", properties.Version)
	fmt.Println("node:             ", properties.NodeServer)
	fmt.Println("sync height:      ", status.Sync)
	fmt.Println("node height:      ", status.Current)
	for _, adr := range properties.Watched {
		fmt.Println("watching:         ", adr.RS())
	}
}

var daemonLimit uint64

// daemonTransactionsCmd represents the transactions command
var daemonTransactionsCmd = func() *cobra.Command {
	cmd := &cobra.Command{
		DisableFlagsInUseLine: true,
		Use: `
transactions [--limit N] ADDRESS...`[1:],
		Aliases: []string{"txs"},
		Short:   "Get recent transactions of watched accounts",
		Long: `
Get the most recent transactions involving each ADDRESS, newest first. Each
ADDRESS must be watched by burstkitd.
`[1:],
		Args:   getAccountArgs,
		PreRun: initDaemonClient,
		Run:    daemonTransactions,
	}
	cmd.Flags().Uint64VarP(&daemonLimit, "limit", "l", api.DefaultLimit,
		"Maximum number of transactions per address")
	daemonCmd.AddCommand(cmd)
	daemonCmplCmd.Sub["transactions"] = daemonTransactionsCmplCmd
	rootCmplCmd.Sub["help"].Sub["daemon"].Sub["transactions"] =
		complete.Command{}
	generateCmplFlags(cmd, daemonTransactionsCmplCmd.Flags)
	return cmd
}()

var daemonTransactionsCmplCmd = complete.Command{
	Flags: mergeFlags(apiCmplFlags),
	Args:  complete.PredictAnything,
}

func daemonTransactions(_ *cobra.Command, _ []string) {
	for _, adr := range addresses {
		adr := adr
		params := api.ParamsGetAccountTransactions{
			ParamsAccount: api.ParamsAccount{Address: &adr},
			ParamsLimit:   api.ParamsLimit{Limit: daemonLimit},
		}
		var txs []node.Transaction
		if err := DaemonClient.Request("get-account-transactions", params,
			&txs); err != nil {
			log.Fatalf("%v: %v", adr.RS(), err)
		}
		fmt.Println(adr.RS())
		for _, tx := range txs {
			fmt.Printf("  %v height %v from %v amount %v\n",
				tx.ID, tx.Height, tx.Sender.RS(), tx.Amount)
		}
		if len(txs) == 0 {
			fmt.Println("  no transactions")
		}
	}
}
