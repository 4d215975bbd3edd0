package main

import "dirhop/cmd"

func main() {
	cmd.Execute()
}
