package main

import (
	"os"
	sys "os"
)

func exit() {
	os.Exit(2)
}

func main() {
	defer exit()
	os.Exit(1)  // want "direct os.Exit call in main function"
	sys.Exit(1) // want "direct os.Exit call in main function"
	func() {
		os.Exit(3)
	}()
}
