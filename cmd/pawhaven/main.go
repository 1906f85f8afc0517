package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/pawhaven/pawhaven-tools/cli"
)

func main() {
	_ = godotenv.Load()

	env := cli.Environment{
		Stderr: os.Stderr,
		Stdout: os.Stdout,
		Stdin:  os.Stdin,
	}

	os.Exit(cli.Run(env))
}
