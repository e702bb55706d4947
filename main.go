package main

import "github.com/nextlevelbuilder/selfgo/cmd"

func main() {
	cmd.Execute()
}
