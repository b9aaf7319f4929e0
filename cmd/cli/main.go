package main

import (
	"fmt"
	"os"

	"github.com/de-tools/edw-harness/pkg/edw"
	"github.com/de-tools/edw-harness/pkg/edw/databricks"
	"github.com/de-tools/edw-harness/pkg/edw/snowflake"
	"github.com/de-tools/edw-harness/pkg/runtime/terminal"
)

func main() {
	registry := edw.NewRegistry()
	for _, register := range []func(edw.Registry) error{snowflake.Register, databricks.Register} {
		if err := register(registry); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	cli := terminal.NewCLI(terminal.Options{
		Registry: registry,
		Output:   os.Stdout,
	})

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
