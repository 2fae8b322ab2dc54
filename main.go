package main

import "github.com/modgrid/modgrid-cli/cmd"

func main() {
	cmd.Execute()
}
