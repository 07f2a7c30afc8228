package main

import "ytquiz/cmd"

func main() {
	cmd.Execute()
}
