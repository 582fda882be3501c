package main

import "github.com/tanq16/snatch/cmd"

func main() {
	cmd.Execute()
}
