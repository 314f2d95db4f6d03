package main

import "github.com/fakeyudi/sourcereel/cmd"

func main() {
	cmd.Execute()
}
