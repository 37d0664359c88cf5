package main

import "github.com/haxorport/zapscan-go-client/cmd"

func main() {
	cmd.Execute()
}
