package main

import "github.com/maxvaer/gmapsprobe/cmd"

func main() {
	cmd.Execute()
}
