package main

import "github.com/forPelevin/jumpcut/internal/cli"

func main() {
	cli.Main()
}
