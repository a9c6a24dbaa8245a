package main

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/posener/complete"
	"github.com/spf13/cobra"

	"github.com/burst-apps-team/burstkit/burst"
)

var signed []byte

// broadcastCmd represents the broadcast command
var broadcastCmd = func() *cobra.Command {
	cmd := &cobra.Command{
		DisableFlagsInUseLine: true,
		Use: `
broadcast TX_BYTES`[1:],
		Aliases: []string{"send-transaction"},
		Short:   "Broadcast a signed transaction",
		Long: `
Broadcast the hex encoded bytes of a signed transaction to the network through
the node.
`[1:],
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.ExactArgs(1)(cmd, args); err != nil {
				return err
			}
			var err error
			if signed, err = hex.DecodeString(args[0]); err != nil {
				return fmt.Errorf("invalid TX_BYTES: %w", err)
			}
			return nil
		},
		Run: broadcast,
	}
	rootCmd.AddCommand(cmd)
	rootCmplCmd.Sub["broadcast"] = broadcastCmplCmd
	rootCmplCmd.Sub["help"].Sub["broadcast"] = complete.Command{}
	generateCmplFlags(cmd, broadcastCmplCmd.Flags)
	return cmd
}()

var broadcastCmplCmd = complete.Command{
	Flags: mergeFlags(apiCmplFlags),
	Args:  complete.PredictAnything,
}

func broadcast(_ *cobra.Command, _ []string) {
	ctx, cancel := commandContext()
	defer cancel()
	res, err := Node.BroadcastTransactionResult(ctx, signed).Await(ctx)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("Transaction:", res.Transaction)
	fmt.Println("Full Hash:  ", res.FullHash)
	log.Debugf("Sent to %v peers.", res.NumberPeersSentTo)
}

var (
	nonceAccount burst.ID
	nonce        string
)

// submitNonceCmd represents the submit-nonce command
var submitNonceCmd = func() *cobra.Command {
	cmd := &cobra.Command{
		DisableFlagsInUseLine: true,
		Use: `
submit-nonce --account ID NONCE`[1:],
		Aliases: []string{"nonce"},
		Short:   "Submit a nonce for the current mining round",
		Long: `
Submit NONCE found by a miner for the current mining round and print the
deadline computed by the node.

Solo miners must supply their passphrase through the BURST_CLI_PASSPHRASE
environment variable. Pool miners omit it and the node checks the reward
recipient of --account instead.
`[1:],
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.ExactArgs(1)(cmd, args); err != nil {
				return err
			}
			nonce = args[0]
			return nil
		},
		Run: submitNonce,
	}
	cmd.Flags().Var(idValue{&nonceAccount}, "account", "Numeric account ID")
	cmd.MarkFlagRequired("account")
	rootCmd.AddCommand(cmd)
	rootCmplCmd.Sub["submit-nonce"] = submitNonceCmplCmd
	rootCmplCmd.Sub["help"].Sub["submit-nonce"] = complete.Command{}
	generateCmplFlags(cmd, submitNonceCmplCmd.Flags)
	return cmd
}()

var submitNonceCmplCmd = complete.Command{
	Flags: mergeFlags(apiCmplFlags),
	Args:  complete.PredictNothing,
}

func submitNonce(_ *cobra.Command, _ []string) {
	var passphrase *string
	if p, ok := os.LookupEnv("BURST_CLI_PASSPHRASE"); ok {
		passphrase = &p
	}
	ctx, cancel := commandContext()
	defer cancel()
	deadline, err := Node.SubmitNonce(ctx, passphrase, nonce,
		nonceAccount).Await(ctx)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("Deadline:", deadline)
}

type idValue struct{ *burst.ID }

func (v idValue) Type() string { return "id" }
