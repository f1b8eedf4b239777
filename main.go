// Command eve runs the dispatch-demo HTTP service: `eve serve` boots a
// dispatch.Engine (registry, Path/Chained/Index/Default dispatchers,
// request lifecycle) behind an echo server, and `eve routes` prints its
// action table. See cli/root.go and cli/routes.go for the subcommands.
package main

import (
	"log"

	"github.com/evalgo-org/cutelyst-go/cli"
)

func main() {
	if err := cli.RootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
