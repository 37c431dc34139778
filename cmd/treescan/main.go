package main

import (
	"fmt"
	"os"

	"github.com/mvoronov/treescan/internal/cli"
	"github.com/mvoronov/treescan/internal/utils"
)

// main is the entry point for the treescan command.
func main() {
	loggerInstance, loggerInitializationError := utils.NewApplicationLogger()
	if loggerInitializationError != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", loggerInitializationError)
		os.Exit(1)
	}
	defer loggerInstance.Sync()
	if applicationExecutionError := cli.Execute(loggerInstance); applicationExecutionError != nil {
		loggerInstance.Fatal(applicationExecutionError.Error())
	}
}
