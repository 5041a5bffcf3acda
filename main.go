package main

import (
	"github.com/axellelanca/shortlinkctl/cmd"
	_ "github.com/axellelanca/shortlinkctl/cmd/cli"
	_ "github.com/axellelanca/shortlinkctl/cmd/server"
)

func main() {
	cmd.Execute()
}
