package main

import "github.com/andrescamacho/jobshop-sim/internal/adapters/cli"

func main() {
	cli.Execute()
}
