package main

import "github.com/kiesman99/backdrop/cmd"

func main() {
	cmd.Execute()
}
