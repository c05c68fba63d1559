package main

import cmd "github.com/kerbaras/mangadex-dl/cmd/mangadl"

func main() {
	cmd.Execute()
}
