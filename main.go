package main

import "github.com/modpanel/cli/cmd"

func main() {
	cmd.Execute()
}
