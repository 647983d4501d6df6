package main

import (
	"github.com/dagknows/dkproxyctl/cmd"
)

var (
	version string
	commit  string
	date    string
)

func main() {
	cmd.ExecuteCLI(version, commit, date)
}
