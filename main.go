package main

import "github.com/josephlewis42/octane/cmd"

func main() {
	cmd.Execute()
}
