package main

import "github.com/example/doctoshotgun/internal/interfaces/cli"

func main() {
	cli.Execute()
}
