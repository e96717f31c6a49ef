package main

import "github.com/statdisc/confly/cmd"

func main() {
	cmd.Execute()
}
