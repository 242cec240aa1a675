// Package main is the entry point of the dasim command.
package main

import "github.com/sarchlab/dasim/dasim/cmd"

func main() {
	cmd.Execute()
}
