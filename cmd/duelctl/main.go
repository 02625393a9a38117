package main

import "github.com/duelhub/duelhub/internal/cli"

func main() {
	cli.Execute()
}
