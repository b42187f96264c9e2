package main

import "github.com/mpetrik/photo-people/cmd"

func main() {
	cmd.Execute()
}
