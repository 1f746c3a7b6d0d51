// Command batchmaker builds SPM first-level model batches from design files.
package main

import "github.com/berth-dev/batchmaker/internal/cli"

func main() {
	cli.Execute()
}
