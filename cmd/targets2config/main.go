package main

import "github.com/dbsmedya/targets2config/cmd/targets2config/cmd"

func main() {
	cmd.Execute()
}
