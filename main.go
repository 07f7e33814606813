package main

import "github.com/emrgen/research/cmd"

func main() {
	cmd.Execute()
}
