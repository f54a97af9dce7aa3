package main

import "builtwith/internal/cmd"

func main() {
	cmd.Execute()
}
