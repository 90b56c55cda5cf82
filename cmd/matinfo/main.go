// Command matinfo inspects MATLAB Level 5 .mat files.
package main

import "github.com/thisMagpie/nmatrix/cmd/matinfo/cmd"

func main() {
	cmd.Execute()
}
