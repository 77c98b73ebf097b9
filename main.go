package main

import "github.com/blockwatch/spawnerd/cmd"

func main() {
	cmd.Execute()
}
