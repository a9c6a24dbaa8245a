package main

import (
	"fmt"
	"strconv"

	"github.com/posener/complete"
	"github.com/spf13/cobra"

	"github.com/burst-apps-team/burstkit/burst"
	"github.com/burst-apps-team/burstkit/node"
	"github.com/burst-apps-team/burstkit/scheduler"
)

// getCmd represents the get command
var getCmd = func() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get",
		Short: "block|account|transaction|fee|mining",
		Long: `
Get blocks, accounts, transactions, the suggested fees or the current mining
round from the Burst node.

The node API must be trusted to ensure the security and validity of returned
data.
`[1:],
	}
	rootCmd.AddCommand(cmd)
	rootCmplCmd.Sub["get"] = getCmplCmd
	rootCmplCmd.Sub["help"].Sub["get"] = complete.Command{Sub: complete.Commands{}}
	generateCmplFlags(cmd, getCmplCmd.Flags)
	return cmd
}()

var getCmplCmd = complete.Command{
	Flags: mergeFlags(apiCmplFlags),
	Sub:   complete.Commands{},
}

var blockByID bool

// getBlockCmd represents the block command
var getBlockCmd = func() *cobra.Command {
	cmd := &cobra.Command{
		DisableFlagsInUseLine: true,
		Use: `
block [--id] HEIGHT|ID...`[1:],
		Aliases: []string{"blocks"},
		Short:   "Get blocks by height or id",
		Long: `
Get the block at each HEIGHT, or with each ID if --id is given.
`[1:],
		Args: getBlockArgs,
		Run:  getBlock,
	}
	cmd.Flags().BoolVar(&blockByID, "id", false,
		"Look up blocks by ID instead of height")
	getCmd.AddCommand(cmd)
	getCmplCmd.Sub["block"] = getBlockCmplCmd
	rootCmplCmd.Sub["help"].Sub["get"].Sub["block"] = complete.Command{}
	generateCmplFlags(cmd, getBlockCmplCmd.Flags)
	return cmd
}()

var getBlockCmplCmd = complete.Command{
	Flags: mergeFlags(apiCmplFlags),
	Args:  complete.PredictAnything,
}

var (
	heights []uint32
	ids     []burst.ID
)

func getBlockArgs(cmd *cobra.Command, args []string) error {
	if err := cobra.MinimumNArgs(1)(cmd, args); err != nil {
		return err
	}
	if blockByID {
		return parseIDs(args)
	}
	heights = make([]uint32, len(args))
	for i, arg := range args {
		height, err := strconv.ParseUint(arg, 10, 32)
		if err != nil {
			return fmt.Errorf("invalid height %q: %w", arg, err)
		}
		heights[i] = uint32(height)
	}
	return nil
}

func parseIDs(args []string) error {
	ids = make([]burst.ID, len(args))
	for i, arg := range args {
		if err := ids[i].Set(arg); err != nil {
			return err
		}
	}
	return nil
}

func getBlock(_ *cobra.Command, _ []string) {
	ctx, cancel := commandContext()
	defer cancel()
	var blocks []*scheduler.Future[node.Block]
	for _, height := range heights {
		blocks = append(blocks, Node.GetBlockAtHeight(ctx, height))
	}
	for _, id := range ids {
		blocks = append(blocks, Node.GetBlock(ctx, id))
	}
	for _, f := range blocks {
		b, err := f.Await(ctx)
		if err != nil {
			log.Fatal(err)
		}
		printJSON(b)
	}
}

var addresses []burst.Address

// getAccountCmd represents the account command
var getAccountCmd = func() *cobra.Command {
	cmd := &cobra.Command{
		DisableFlagsInUseLine: true,
		Use: `
account ADDRESS...`[1:],
		Aliases: []string{"accounts", "balance"},
		Short:   "Get accounts and their balances",
		Long: `
Get the account details and balance of each ADDRESS.

An ADDRESS may be given as either a numeric account ID or an RS address, e.g.
BURST-2Z2Y-LWDF-C8M9-D4EEJ.
`[1:],
		Args: getAccountArgs,
		Run:  getAccount,
	}
	getCmd.AddCommand(cmd)
	getCmplCmd.Sub["account"] = getAccountCmplCmd
	rootCmplCmd.Sub["help"].Sub["get"].Sub["account"] = complete.Command{}
	generateCmplFlags(cmd, getAccountCmplCmd.Flags)
	return cmd
}()

var getAccountCmplCmd = complete.Command{
	Flags: mergeFlags(apiCmplFlags),
	Args:  complete.PredictAnything,
}

func getAccountArgs(cmd *cobra.Command, args []string) error {
	if err := cobra.MinimumNArgs(1)(cmd, args); err != nil {
		return err
	}
	addresses = make([]burst.Address, len(args))
	dupl := make(map[burst.Address]struct{}, len(args))
	for i := range addresses {
		adr := &addresses[i]
		if err := adr.Set(args[i]); err != nil {
			return err
		}
		if _, ok := dupl[*adr]; ok {
			return fmt.Errorf("duplicate: %v", adr)
		}
		dupl[*adr] = struct{}{}
	}
	return nil
}

func getAccount(_ *cobra.Command, _ []string) {
	ctx, cancel := commandContext()
	defer cancel()
	log.Debugf("Fetching %v accounts...", len(addresses))
	accounts := make([]*scheduler.Future[node.Account], len(addresses))
	for i, adr := range addresses {
		accounts[i] = Node.GetAccount(ctx, adr)
	}
	for i, f := range accounts {
		account, err := f.Await(ctx)
		if err != nil {
			log.Fatalf("%v: %v", addresses[i].RS(), err)
		}
		fmt.Println(addresses[i].RS(), account.Balance)
		if Debug {
			printJSON(account)
		}
	}
}

// getTransactionCmd represents the transaction command
var getTransactionCmd = func() *cobra.Command {
	cmd := &cobra.Command{
		DisableFlagsInUseLine: true,
		Use: `
transaction ID...`[1:],
		Aliases: []string{"transactions", "tx", "txs"},
		Short:   "Get transactions by id",
		Long: `
Get the transaction with each ID, including its decoded attachment.
`[1:],
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.MinimumNArgs(1)(cmd, args); err != nil {
				return err
			}
			return parseIDs(args)
		},
		Run: getTransaction,
	}
	getCmd.AddCommand(cmd)
	getCmplCmd.Sub["transaction"] = getTransactionCmplCmd
	rootCmplCmd.Sub["help"].Sub["get"].Sub["transaction"] = complete.Command{}
	generateCmplFlags(cmd, getTransactionCmplCmd.Flags)
	return cmd
}()

var getTransactionCmplCmd = complete.Command{
	Flags: mergeFlags(apiCmplFlags),
	Args:  complete.PredictAnything,
}

func getTransaction(_ *cobra.Command, _ []string) {
	ctx, cancel := commandContext()
	defer cancel()
	txs := make([]*scheduler.Future[node.Transaction], len(ids))
	for i, id := range ids {
		txs[i] = Node.GetTransaction(ctx, id)
	}
	for _, f := range txs {
		tx, err := f.Await(ctx)
		if err != nil {
			log.Fatal(err)
		}
		printJSON(tx)
	}
}

// getFeeCmd represents the fee command
var getFeeCmd = func() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "fee",
		Aliases: []string{"fees"},
		Short:   "Get the suggested fees",
		Long: `
Get the cheap, standard and priority fees currently suggested by the node.
`[1:],
		Args: cobra.ExactArgs(0),
		Run:  getFee,
	}
	getCmd.AddCommand(cmd)
	getCmplCmd.Sub["fee"] = getFeeCmplCmd
	rootCmplCmd.Sub["help"].Sub["get"].Sub["fee"] = complete.Command{}
	generateCmplFlags(cmd, getFeeCmplCmd.Flags)
	return cmd
}()

var getFeeCmplCmd = complete.Command{
	Flags: mergeFlags(apiCmplFlags),
}

func getFee(_ *cobra.Command, _ []string) {
	ctx, cancel := commandContext()
	defer cancel()
	fee, err := Node.SuggestFee(ctx).Await(ctx)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("cheap:   ", fee.Cheap)
	fmt.Println("standard:", fee.Standard)
	fmt.Println("priority:", fee.Priority)
}

var followMining bool

// getMiningCmd represents the mining command
var getMiningCmd = func() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "mining",
		Aliases: []string{"mininginfo", "round"},
		Short:   "Get the current mining round",
		Long: `
Get the height, base target and generation signature of the current mining
round. With --follow, print every new round until interrupted.
`[1:],
		Args: cobra.ExactArgs(0),
		Run:  getMining,
	}
	cmd.Flags().BoolVarP(&followMining, "follow", "f", false,
		"Print every new mining round until interrupted")
	getCmd.AddCommand(cmd)
	getCmplCmd.Sub["mining"] = getMiningCmplCmd
	rootCmplCmd.Sub["help"].Sub["get"].Sub["mining"] = complete.Command{}
	generateCmplFlags(cmd, getMiningCmplCmd.Flags)
	return cmd
}()

var getMiningCmplCmd = complete.Command{
	Flags: mergeFlags(apiCmplFlags),
}

func getMining(_ *cobra.Command, _ []string) {
	ctx, cancel := commandContext()
	defer cancel()
	rounds := Node.GetMiningInfo(ctx)
	defer rounds.Cancel()
	for {
		mi, err := rounds.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Fatal(err)
		}
		fmt.Printf("height: %v base target: %v generation signature: %v\n",
			mi.Height, mi.BaseTarget, mi.GenerationSignature)
		if !followMining {
			return
		}
	}
}
