package main

import "github.com/papapumpkin/lexis/cmd"

func main() {
	cmd.Execute()
}
