package main

import "github.com/shelfview/shelfview/cmd"

func main() {
	cmd.Execute()
}
