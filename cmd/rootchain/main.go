package main

import (
	"github.com/thetatoken/rootchain/cmd/rootchain/cmd"
)

func main() {
	cmd.Execute()
}
