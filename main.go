// ABOUTME: Entry point for the skumap CLI
// ABOUTME: Terminal client for the SKU mapping reconciliation backend

package main

import (
	"fmt"
	"os"

	"github.com/mappingdesk/skumap/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
