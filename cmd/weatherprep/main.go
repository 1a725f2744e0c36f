// Command weatherprep prepares the daily weather observation table for a
// rain-tomorrow classifier: it cleans, encodes and scales the input CSV and
// produces a seeded train/test split.
//
// Usage:
//
//	weatherprep prepare weatherAUS.csv --out prepared/ --metrics-file weatherprep.prom
//	weatherprep validate prepared/
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
