package main

import "casepad/cmd/client/cmd"

func main() {
	cmd.Execute()
}
