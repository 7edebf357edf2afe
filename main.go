// Package main is the dbcompare entry point. It delegates to the cobra
// command tree defined under cmd/dbcompare.
package main

import cmd "github.com/mwiater/dbcompare/cmd/dbcompare"

// main starts the dbcompare CLI application by delegating to the cobra
// root command. It does not take any arguments and does not return a
// value.
func main() {
	cmd.Execute()
}
