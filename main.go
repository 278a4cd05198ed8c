package main

import "github.com/KaramelBytes/ecoreport/cmd"

func main() {
	cmd.Execute()
}
