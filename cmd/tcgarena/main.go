package main

import "github.com/mcoot/tcgarena/internal/cli"

func main() {
	cli.Execute()
}
