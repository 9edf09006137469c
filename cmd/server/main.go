package main

import "github.com/UkralStul/blog-service/cmd/server/commands"

func main() {
	commands.Execute()
}
