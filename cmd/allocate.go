package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/1ndex13/logistic-app/app"
	"github.com/1ndex13/logistic-app/config"
	"github.com/1ndex13/logistic-app/core/allocation"
	"github.com/1ndex13/logistic-app/infra/logger"
	"github.com/1ndex13/logistic-app/pkg/export"
)

var (
	dryRun     bool
	planFormat string
	planOutput string
)

var allocateCmd = &cobra.Command{
	Use:   "allocate",
	Short: "Run one fleet-wide allocation pass and print the outcome",
	RunE:  allocateAll,
}

func init() {
	allocateCmd.Flags().BoolVar(&dryRun, "dry-run", false, "plan only, apply nothing")
	allocateCmd.Flags().StringVar(&planFormat, "format", "text", "dry-run output format: text, json or csv")
	allocateCmd.Flags().StringVar(&planOutput, "output", "", "write the dry-run plan to a file instead of stdout")
	rootCmd.AddCommand(allocateCmd)
}

func allocateAll(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("allocate-command").Errorf("service close: %v", err)
		}
	}()

	if dryRun {
		plan, err := svc.Allocator.PlanAll(ctx)
		if err != nil {
			return err
		}
		return writePlan(plan)
	}

	res, err := svc.Allocator.AutoAllocateAll(ctx)
	if err != nil {
		return err
	}
	for _, pr := range res.Results {
		if pr.Err != nil {
			fmt.Printf("%s -> %s failed: %v\n", pr.Plan.VehicleID, pr.Plan.WarehouseID, pr.Err)
			continue
		}
		fmt.Printf("%s -> %s (%.2f m3)\n", pr.Plan.VehicleID, pr.Plan.WarehouseID, pr.Plan.Volume)
	}
	fmt.Printf("applied %d, failed %d, unallocated %d\n", res.Applied(), res.Failed(), len(res.Unallocated))
	return nil
}

func writePlan(plan allocation.BulkPlan) error {
	var out io.Writer = os.Stdout
	if planOutput != "" {
		f, err := os.Create(planOutput)
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()
		out = f
	}
	switch planFormat {
	case "json":
		return export.WriteJSON(out, plan)
	case "csv":
		return export.WriteCSV(out, plan)
	case "text":
		for _, p := range plan.Plans {
			fmt.Fprintf(out, "%s -> %s (%.2f m3, new load %.2f)\n", p.VehicleID, p.WarehouseID, p.Volume, p.NewLoad)
		}
		fmt.Fprintf(out, "planned %d, unallocated %d\n", len(plan.Plans), len(plan.Unallocated))
		return nil
	default:
		return fmt.Errorf("unknown format %s", planFormat)
	}
}
