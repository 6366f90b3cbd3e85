package main

import "github.com/theirongolddev/goldplan/cmd"

func main() {
	cmd.Execute()
}
