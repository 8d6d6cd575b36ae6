// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// "weighted-cli" runs and inspects weighted pools on a local database.
package main

import (
	"fmt"
	"os"

	"github.com/ava-labs/weightedvm/cmd/weighted-cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "weighted-cli exited with error: %+v\n", err)
		os.Exit(1)
	}
	os.Exit(0)
}
