package main

import "github.com/papapumpkin/ziwei/cmd"

func main() {
	cmd.Execute()
}
