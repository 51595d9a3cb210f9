// The main package for the bgpkit-broker executable.
package main

import (
	"github.com/bgpkit/broker-go/cmd"
)

func main() {
	cmd.Execute()
}
