package main

import (
	"fmt"
	"strings"

	"github.com/posener/complete"
	"github.com/spf13/cobra"

	"github.com/burst-apps-team/burstkit/burst"
	"github.com/burst-apps-team/burstkit/scheduler"
	"github.com/burst-apps-team/burstkit/transaction"
)

var (
	header = transaction.Header{Deadline: 1440}

	recipient Address
	amount    Amount
	message   string
)

// generateCmd represents the generate command
var generateCmd = func() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "generate",
		Aliases: []string{"gen"},
		Short:   "payment|multi-out|reward-recipient",
		Long: `
Generate the bytes of an unsigned transaction offline.

The unsigned bytes are printed as hex. They must be signed with the private key
matching --publickey before they can be broadcast. The timestamp is the current
time.
`[1:],
	}
	flags := cmd.PersistentFlags()
	flags.VarP((*PublicKey)(&header.SenderPublicKey), "publickey", "k",
		"Public key of the sender as hex")
	flags.Var((*Amount)(&header.Fee), "fee",
		"Fee in BURST, e.g. 0.00735")
	flags.Uint16Var(&header.Deadline, "deadline", header.Deadline,
		"Deadline in minutes, at most 1440")
	cmd.MarkPersistentFlagRequired("publickey")
	cmd.MarkPersistentFlagRequired("fee")

	rootCmd.AddCommand(cmd)
	rootCmplCmd.Sub["generate"] = generateCmplCmd
	rootCmplCmd.Sub["help"].Sub["generate"] = complete.Command{
		Sub: complete.Commands{}}
	generateCmplFlags(cmd, generateCmplCmd.Flags)
	return cmd
}()

var generateCmplCmd = complete.Command{
	Flags: mergeFlags(apiCmplFlags),
	Sub:   complete.Commands{},
}

// generatePaymentCmd represents the payment command
var generatePaymentCmd = func() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "payment",
		Aliases: []string{"pay", "send"},
		Short:   "Generate a payment with an optional message",
		Long: `
Generate an ordinary payment of --amount to --recipient, optionally with a
plain text --message.
`[1:],
		Args: cobra.ExactArgs(0),
		Run:  generatePayment,
	}
	flags := cmd.Flags()
	flags.VarP(&recipient, "recipient", "r", "Recipient address")
	flags.VarP(&amount, "amount", "a", "Amount in BURST, e.g. 1.5")
	flags.StringVarP(&message, "message", "m", "", "Plain text message")
	cmd.MarkFlagRequired("recipient")
	cmd.MarkFlagRequired("amount")

	generateCmd.AddCommand(cmd)
	generateCmplCmd.Sub["payment"] = generatePaymentCmplCmd
	rootCmplCmd.Sub["help"].Sub["generate"].Sub["payment"] = complete.Command{}
	generateCmplFlags(cmd, generatePaymentCmplCmd.Flags)
	return cmd
}()

var generatePaymentCmplCmd = complete.Command{
	Flags: mergeFlags(apiCmplFlags),
}

func generatePayment(_ *cobra.Command, _ []string) {
	p := transaction.Params{
		Header:    header,
		Recipient: burst.Address(recipient),
		Amount:    burst.Value(amount),
	}
	var f *scheduler.Future[[]byte]
	var err error
	if len(message) > 0 {
		f, err = Node.GenerateTransactionWithMessage(p, message)
	} else {
		f, err = Node.GenerateTransaction(p)
	}
	printUnsigned(f, err)
}

// generateMultiOutCmd represents the multi-out command
var generateMultiOutCmd = func() *cobra.Command {
	cmd := &cobra.Command{
		DisableFlagsInUseLine: true,
		Use: `
multi-out ADDRESS:AMOUNT...|--amount AMOUNT ADDRESS...`[1:],
		Aliases: []string{"multiout"},
		Short:   "Generate a payment to multiple recipients",
		Long: `
Generate a multi-out payment.

Each ADDRESS:AMOUNT pays AMOUNT BURST to ADDRESS. If --amount is given instead,
it is split evenly among every ADDRESS.
`[1:],
		Args: generateMultiOutArgs,
		Run:  generateMultiOut,
	}
	cmd.Flags().VarP(&amount, "amount", "a",
		"Total amount in BURST split evenly among all recipients")

	generateCmd.AddCommand(cmd)
	generateCmplCmd.Sub["multi-out"] = generateMultiOutCmplCmd
	rootCmplCmd.Sub["help"].Sub["generate"].Sub["multi-out"] = complete.Command{}
	generateCmplFlags(cmd, generateMultiOutCmplCmd.Flags)
	return cmd
}()

var generateMultiOutCmplCmd = complete.Command{
	Flags: mergeFlags(apiCmplFlags),
	Args:  complete.PredictAnything,
}

var payments map[burst.Address]burst.Value

func generateMultiOutArgs(cmd *cobra.Command, args []string) error {
	if err := cobra.MinimumNArgs(1)(cmd, args); err != nil {
		return err
	}
	if cmd.Flags().Changed("amount") {
		return getAccountArgs(cmd, args)
	}
	payments = make(map[burst.Address]burst.Value, len(args))
	for _, arg := range args {
		i := strings.LastIndexByte(arg, ':')
		if i < 0 {
			return fmt.Errorf("invalid ADDRESS:AMOUNT %q", arg)
		}
		var adr burst.Address
		if err := adr.Set(arg[:i]); err != nil {
			return err
		}
		v, err := burst.ParseValue(arg[i+1:])
		if err != nil {
			return err
		}
		if _, ok := payments[adr]; ok {
			return fmt.Errorf("duplicate: %v", adr)
		}
		payments[adr] = v
	}
	return nil
}

func generateMultiOut(cmd *cobra.Command, _ []string) {
	if cmd.Flags().Changed("amount") {
		printUnsigned(Node.GenerateMultiOutSameTransaction(header,
			burst.Value(amount), addresses))
		return
	}
	printUnsigned(Node.GenerateMultiOutTransaction(header, payments))
}

// generateRewardRecipientCmd represents the reward-recipient command
var generateRewardRecipientCmd = func() *cobra.Command {
	cmd := &cobra.Command{
		DisableFlagsInUseLine: true,
		Use: `
reward-recipient ADDRESS`[1:],
		Aliases: []string{"rewardrecipient"},
		Short:   "Generate a reward recipient assignment",
		Long: `
Generate a transaction assigning ADDRESS, usually a pool, as the recipient of
the block rewards forged by the sender.
`[1:],
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.ExactArgs(1)(cmd, args); err != nil {
				return err
			}
			return recipient.Set(args[0])
		},
		Run: func(_ *cobra.Command, _ []string) {
			printUnsigned(Node.GenerateSetRewardRecipientTransaction(
				header, burst.Address(recipient)))
		},
	}
	generateCmd.AddCommand(cmd)
	generateCmplCmd.Sub["reward-recipient"] = generateRewardRecipientCmplCmd
	rootCmplCmd.Sub["help"].Sub["generate"].Sub["reward-recipient"] =
		complete.Command{}
	generateCmplFlags(cmd, generateRewardRecipientCmplCmd.Flags)
	return cmd
}()

var generateRewardRecipientCmplCmd = complete.Command{
	Flags: mergeFlags(apiCmplFlags),
	Args:  complete.PredictAnything,
}

func printUnsigned(f *scheduler.Future[[]byte], err error) {
	if err != nil {
		log.Fatal(err)
	}
	ctx, cancel := commandContext()
	defer cancel()
	unsigned, err := f.Await(ctx)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(burst.Bytes(unsigned))
}
