package main

import "github.com/clipkit/clipkit/internal/cli"

func main() {
	cli.Main()
}
