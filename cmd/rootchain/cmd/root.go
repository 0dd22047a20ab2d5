package cmd

import (
	"fmt"
	"os"
	"path"
	"strings"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/thetatoken/rootchain/common"
	"github.com/thetatoken/rootchain/common/util"
)

var cfgPath string

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "rootchain",
	Short: "Rootchain bridge node",
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	RootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", fmt.Sprintf("config path (default is %s)", getDefaultConfigPath()))
	viper.BindPFlag(common.CfgConfigPath, RootCmd.PersistentFlags().Lookup("config"))

	// Support for custom db path
	RootCmd.PersistentFlags().String("data", "", "data path (default to config path)")
	viper.BindPFlag(common.CfgDataPath, RootCmd.PersistentFlags().Lookup("data"))
}

// initConfig is called when cmd.Execute() is called. reads in config file and ENV variables if set.
func initConfig() {
	// Search config (without extension).
	viper.SetConfigName("config")

	viper.SetEnvPrefix("ROOTCHAIN")
	viper.AutomaticEnv() // read in environment variables that match
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfgPath = viper.GetString(common.CfgConfigPath)
	if cfgPath == "" {
		cfgPath = getDefaultConfigPath()
	}

	viper.AddConfigPath(cfgPath)

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}

	util.InitLog()
}

// getDefaultConfigPath returns the default config path.
func getDefaultConfigPath() string {
	home, err := homedir.Dir()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	return path.Join(home, ".rootchain")
}

// getDataPath returns the data path, which defaults to the config path.
func getDataPath() string {
	if dataPath := viper.GetString(common.CfgDataPath); dataPath != "" {
		return dataPath
	}
	return cfgPath
}
