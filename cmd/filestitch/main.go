// Command filestitch inspects and reads multi-file image datasets described
// by file patterns.
package main

func main() {
	Execute()
}
