package main

import "github.com/findyjobs/findy/cmd/findy/cmd"

func main() {
	cmd.Execute()
}
