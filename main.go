package main

import "github.com/zinc-sig/fixgen/cmd"

func main() {
	cmd.Execute()
}
