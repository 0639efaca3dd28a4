// Command local runs the support agent outside Lambda, backed by SQLite.
package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
