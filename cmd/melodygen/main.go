package main

import "github.com/jce77/melodygen/internal/cmd"

func main() {
	cmd.Execute()
}
