package cmd

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/thetatoken/rootchain/ledger/types"
)

// txCmd represents the tx command
var txCmd = &cobra.Command{
	Use:   "tx",
	Short: "Transaction utilities.",
}

// txDecodeCmd decodes a hex encoded transaction
var txDecodeCmd = &cobra.Command{
	Use:     "decode <tx_hex>",
	Short:   "Decode a raw transaction and print its content.",
	Example: "rootchain tx decode 0x02f8...",
	Args:    cobra.ExactArgs(1),
	Run:     runTxDecode,
}

func init() {
	txCmd.AddCommand(txDecodeCmd)
	RootCmd.AddCommand(txCmd)
}

func runTxDecode(cmd *cobra.Command, args []string) {
	input := args[0]
	if !strings.HasPrefix(input, "0x") {
		input = "0x" + input
	}
	raw, err := hexutil.Decode(input)
	if err != nil {
		log.WithFields(log.Fields{"err": err}).Fatal("Transaction is not a hex string")
	}
	tx, err := types.TxFromBytes(raw)
	if err != nil {
		log.WithFields(log.Fields{"err": err}).Fatal("Failed to decode transaction")
	}
	fmt.Printf("Hash: %v\nSender: %v\n%v\n", types.TxID(tx).Hex(), tx.Sender().Hex(), tx)
}
