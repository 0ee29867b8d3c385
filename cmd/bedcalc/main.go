package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"HeatExchange/internal/calc/exchanger"
	"HeatExchange/internal/calc/report"
	"HeatExchange/internal/config"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		log.Fatal(err)
	}
}

func newRootCmd(stdout io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "bedcalc",
		Short:         "Moving-bed counter-current heat exchanger calculator",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newProfileCmd(stdout))
	return root
}

func newProfileCmd(stdout io.Writer) *cobra.Command {
	var (
		input  string
		out    string
		format string
		steps  int
	)
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Compute the temperature profile from an INI parameter file",
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := config.LoadDefaults(input)
			if err != nil {
				return fmt.Errorf("read %s: %w", input, err)
			}
			if steps > 0 {
				in.Parameters.CalculationSteps = steps
			}
			res, err := exchanger.Calculate(in.Parameters)
			if err != nil {
				return err
			}
			for _, w := range res.Warnings {
				log.Warn(w)
			}
			fmt.Fprintf(stdout, "Q = %.3f kW, efficiency = %.1f %%, material outlet = %.1f °C, gas outlet = %.1f °C\n",
				res.TotalHeatTransferKW, res.EfficiencyPct, res.MaterialOutletTemp, res.GasOutletTemp)
			if out == "" {
				return nil
			}
			if format == "" {
				format = strings.TrimPrefix(filepath.Ext(out), ".")
			}
			return writeExport(out, format, in, res)
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "INI file with [material], [gas] and [parameters] sections")
	cmd.Flags().StringVarP(&out, "out", "o", "", "write the profile to this file")
	cmd.Flags().StringVarP(&format, "format", "f", "", "csv, xlsx or png (default: from the --out extension)")
	cmd.Flags().IntVar(&steps, "steps", 0, "override calculation_steps")
	cmd.MarkFlagRequired("input")
	return cmd
}

func writeExport(path, format string, in exchanger.Input, res exchanger.Result) error {
	var write func(io.Writer) error
	switch format {
	case "csv":
		write = func(w io.Writer) error { return report.WriteCSV(w, res) }
	case "xlsx":
		write = func(w io.Writer) error { return report.WriteXLSX(w, in, res) }
	case "png":
		write = func(w io.Writer) error { return report.WritePlot(w, in.Name, res, "png") }
	default:
		return fmt.Errorf("unsupported format %q", format)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
