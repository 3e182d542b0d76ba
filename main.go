package main

import "github.com/lupinelegend/f1-radio-archive/cmd"

func main() {
	cmd.Execute()
}
