package main

import "github.com/theleywin/friendlynk/src/commands"

func main() {
	commands.Execute()
}
