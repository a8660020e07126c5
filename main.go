package main

import "github.com/relloyd/makedw/cmd"

func main() {
	cmd.Execute()
}
