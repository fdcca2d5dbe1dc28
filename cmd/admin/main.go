package main

import (
	"fmt"
	"os"

	"github.com/pequemaths/pequemaths-api/internal/cli"
)

func main() {
	if err := cli.NewRootCmd(cli.DefaultOpener).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
