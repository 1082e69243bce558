package main

import (
	"os"

	"SvnBackuper/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
