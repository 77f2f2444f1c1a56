package main

import "phonestore/internal/cmd"

func main() {
	cmd.Execute()
}
