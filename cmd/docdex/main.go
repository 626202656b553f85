package main

import "docdex/internal/cli"

func main() {
	cli.Execute()
}
