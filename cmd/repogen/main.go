package main

import "github.com/dangerouslaser/repogen/cmd/repogen/cmd"

func main() {
	cmd.Execute()
}
