// Command council runs one council deliberation session end to end from a
// council.yaml configuration, or scaffolds a starter configuration for a
// new council.
package main

func main() {
	Execute()
}
