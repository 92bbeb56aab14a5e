package main

import "github.com/serverlessresearch/s3os/cmd"

// The s3os command line tool is a single executable using the subcommand
// pattern common to cloud utilities; see the cmd package.
func main() {
	cmd.Execute()
}
