package main

import "github.com/rejaad/rearchive/cmd/rearchive/commands"

func main() {
	commands.Execute()
}
