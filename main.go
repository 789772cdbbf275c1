package main

import "github.com/clems4ever/selectorvm/cmd"

func main() {
	cmd.Execute()
}
