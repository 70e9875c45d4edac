// Command aies runs fairness experiments: it loads an experiment config,
// audits a baseline classifier for selection-rate disparity across a
// sensitive attribute, mitigates under a demographic-parity constraint and
// prints the before/after comparison.
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
