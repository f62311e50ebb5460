package main

import "github.com/quantfold/stratsim/cli"

func main() {
	cli.Execute()
}
