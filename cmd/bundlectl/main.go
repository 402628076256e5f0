// Command bundlectl builds and checks sampler bundles against a YAML catalog
// without a database or a model key.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
