package main

import "github.com/tessro/tubeq/internal/cli"

func main() {
	cli.Execute()
}
