package main

import (
	"github.com/lehigh-university-libraries/scrubber/cmd"
)

func main() {
	cmd.Execute()
}
