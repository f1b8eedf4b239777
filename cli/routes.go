package cli

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	eve "github.com/evalgo-org/cutelyst-go/common"
)

// routesCmd prints the frozen route table, the Go equivalent of
// CutelystDispatcher::printActions(): boot an Engine with the same
// controllers/plugins `eve serve` would register, then render every
// DispatchType's routes alongside the private-name action table.
var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "print the registered route table",
	Run:   runRoutes,
}

func runRoutes(cmd *cobra.Command, args []string) {
	eve.Logger.SetLevel(logrus.WarnLevel) // suppress Debug registration noise for a clean table
	log := logrus.NewEntry(eve.Logger)

	engine, closeAll, err := buildEngine(log)
	if err != nil {
		log.Fatalf("failed to build engine: %v", err)
	}
	defer closeAll()

	fmt.Println("Routes:")
	for _, r := range engine.Routes() {
		fmt.Printf("  %-8s %-30s %s\n", r.DispatchType, r.Pattern, r.PrivateName)
	}

	fmt.Println("\nActions:")
	for _, a := range engine.Registry().DumpTable() {
		fmt.Printf("  %-30s %s\n", a.PrivateName, a.Pattern)
	}
}
