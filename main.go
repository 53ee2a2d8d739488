package main

import "portfolio/commands"

func main() {
	commands.Execute()
}
