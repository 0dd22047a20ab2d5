package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/thetatoken/rootchain/common"
	"github.com/thetatoken/rootchain/ledger"
	"github.com/thetatoken/rootchain/node"
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start rootchain node.",
	Run:   runStart,
}

func init() {
	RootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) {
	genesis, err := ledger.GenesisFromConfig()
	if err != nil {
		log.WithFields(log.Fields{"err": err}).Fatal("Invalid genesis config")
	}

	registry := prometheus.NewRegistry()
	dataPath := getDataPath()
	db, err := node.OpenDatabase(viper.GetString(common.CfgStorageBackend), dataPath,
		viper.GetInt(common.CfgStorageCacheMB), registry)
	if err != nil {
		log.WithFields(log.Fields{"err": err, "path": dataPath}).Fatal("Failed to open the db")
	}
	defer db.Close()

	n, err := node.NewNode(&node.Params{
		Genesis:  genesis,
		DB:       db,
		Registry: registry,
	})
	if err != nil {
		log.WithFields(log.Fields{"err": err}).Fatal("Failed to create node")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := n.Start(ctx); err != nil {
		log.WithFields(log.Fields{"err": err}).Fatal("Failed to start node")
	}
	log.WithFields(log.Fields{"chainID": genesis.ChainID, "data": dataPath}).Info("Rootchain node started")

	n.Wait()
	log.Info("Rootchain node stopped")
}
