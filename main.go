package main

import (
	"os"

	"github.com/codeshield-io/codeshield/cmd"
)

func main() {
	code := cmd.Execute()
	os.Exit(code)
}
