package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/powerman/rpc-codec/jsonrpc2"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/thetatoken/rootchain/common"
	"github.com/thetatoken/rootchain/rpc"
)

var remoteRPCEndpoint string

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the committed status of a running rootchain node.",
	Run:   runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&remoteRPCEndpoint, "endpoint", "", "RPC endpoint (default is the local node)")
	RootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) {
	endpoint := remoteRPCEndpoint
	if endpoint == "" {
		endpoint = fmt.Sprintf("http://127.0.0.1:%v/rpc", viper.GetString(common.CfgRPCPort))
	}

	client := jsonrpc2.NewHTTPClient(endpoint)
	defer client.Close()

	res := &rpc.GetStatusResult{}
	if err := client.Call("rootchain.GetStatus", &rpc.GetStatusArgs{}, res); err != nil {
		log.WithFields(log.Fields{"err": err, "endpoint": endpoint}).Fatal("Failed to get status")
	}
	formatted, err := json.MarshalIndent(res, "", "    ")
	if err != nil {
		log.WithFields(log.Fields{"err": err}).Fatal("Failed to format status")
	}
	fmt.Println(string(formatted))
}
