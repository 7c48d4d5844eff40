package main

import "github.com/kroma-network/zkvm-common/internal/cli"

func main() {
	cli.Execute()
}
