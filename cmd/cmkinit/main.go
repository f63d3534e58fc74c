package main

import "github.com/goplus/cmkinit/cmd/cmkinit/internal"

func main() {
	internal.Execute()
}
