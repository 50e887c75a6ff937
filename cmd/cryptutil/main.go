// Command cryptutil exists only to report that the cryptutil package is a
// library. Import github.com/absfs/cryptutil instead.
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Fprintln(os.Stderr, "cryptutil: this module cannot be run directly")
	os.Exit(1)
}
