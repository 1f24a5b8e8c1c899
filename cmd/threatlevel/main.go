// Command threatlevel polls the UK national terrorism threat level and
// republishes it over HTTP, Prometheus and optionally Kafka.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
