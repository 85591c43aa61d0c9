package main

import "github.com/clipforge/shotcut/internal/cli"

func main() {
	cli.Main()
}
