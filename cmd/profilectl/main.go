// Command profilectl administers the profile store: migrations, profile registration
// and text records.
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
