package main

import "github.com/naka-gawa/project-size-stats/cmd"

func main() {
	cmd.Execute()
}
