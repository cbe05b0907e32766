package main

import (
	"github.com/onflow/icq-watcher/cmd/watcher/cmd"
)

func main() {
	cmd.Execute()
}
