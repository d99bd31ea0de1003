package main

import "tsrefactor/cmd"

func main() {
	cmd.Execute()
}
