package main

import "github.com/baharkarakas/librarium/cmd/libctl/commands"

func main() {
	commands.Execute()
}
