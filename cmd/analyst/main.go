package main

import "MarketAnalyst/internal/cli"

func main() {
	cli.Execute()
}
