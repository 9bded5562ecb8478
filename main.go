package main

import "github.com/pickbetter/labelscan/cmd"

func main() {
	cmd.Execute()
}
