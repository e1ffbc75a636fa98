package main

import (
	"fmt"
	"os"

	"github.com/tebeka/atexit"

	"github.com/zurustar/hackvm/pkg/app"
	"github.com/zurustar/hackvm/pkg/cli"
)

func main() {
	application := app.New(os.Stdout)
	cmd := cli.NewRootCommand(application.Translate, application.Run)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		atexit.Exit(1)
	}
	atexit.Exit(0)
}
