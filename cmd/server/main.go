package main

import "github.com/Togather-Foundation/planner/cmd/server/cmd"

func main() {
	cmd.Execute()
}
