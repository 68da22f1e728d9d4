package main

import "github.com/hoppxi/fsdim/internal/cmd"

func main() {
	cmd.Execute()
}
