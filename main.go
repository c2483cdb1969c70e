// Package main is the entry point for the tkstats CLI, which records
// fighting-game match results and derives character and player statistics.
package main

import "github.com/pable/tkstats/cmd"

func main() {
	cmd.Execute()
}
