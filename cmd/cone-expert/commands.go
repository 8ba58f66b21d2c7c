package main

import (
	"fmt"
	"os"

	"github.com/iwvelando/cone-expert/internal/calculator"
	"github.com/iwvelando/cone-expert/pkg/cone"
	"github.com/iwvelando/cone-expert/pkg/constants"
	"github.com/iwvelando/cone-expert/pkg/output"
	"github.com/iwvelando/cone-expert/pkg/units"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// optionalFloat returns a pointer to the flag value when the flag was given.
func optionalFloat(cmd *cobra.Command, name string) *float64 {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, err := cmd.Flags().GetFloat64(name)
	if err != nil {
		return nil
	}
	return &v
}

// solverError turns a solver failure into a localized error for the user.
func (a *app) solverError(err error) error {
	if cone.KindOf(err) == 0 {
		return err
	}
	return fmt.Errorf("%s (%s)", a.loc.Error(err), cone.KindOf(err))
}

func angleCmd(a *app) *cobra.Command {
	var large, small, length float64

	cmd := &cobra.Command{
		Use:   "angle",
		Short: "Solve the cone angle and taper ratio from D, d and l",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			outcome, err := a.calc.SolveFromDimensions(calculator.DimensionsInput{
				LargeDiameter:     large,
				SmallDiameter:     small,
				Length:            length,
				RealLargeDiameter: optionalFloat(cmd, "real-large"),
			})
			if err != nil {
				return a.solverError(err)
			}
			return output.WriteOutcome(a.out, a.outputFormat, a.loc, outcome)
		},
	}

	cmd.Flags().Float64VarP(&large, "large", "D", 0, "large diameter D")
	cmd.Flags().Float64VarP(&small, "small", "d", 0, "small diameter d")
	cmd.Flags().Float64VarP(&length, "length", "l", 0, "cone length l")
	cmd.Flags().Float64("real-large", 0, "measured large diameter, to report the manufacturing error")
	_ = cmd.MarkFlagRequired("large")
	_ = cmd.MarkFlagRequired("small")
	_ = cmd.MarkFlagRequired("length")
	return cmd
}

func dimensionCmd(a *app) *cobra.Command {
	var angle float64
	var known string

	cmd := &cobra.Command{
		Use:   "dimension",
		Short: "Solve the missing D, d or l from the angle and two known dimensions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pair, err := cone.ParseKnownPair(known)
			if err != nil {
				return err
			}
			outcome, err := a.calc.SolveMissingDimension(calculator.AngleInput{
				AngleDegrees:  angle,
				Known:         pair,
				LargeDiameter: optionalFloat(cmd, "large"),
				SmallDiameter: optionalFloat(cmd, "small"),
				Length:        optionalFloat(cmd, "length"),
			})
			if err != nil {
				return a.solverError(err)
			}
			return output.WriteOutcome(a.out, a.outputFormat, a.loc, outcome)
		},
	}

	cmd.Flags().Float64VarP(&angle, "angle", "a", 0, "included cone angle α in degrees")
	cmd.Flags().StringVarP(&known, "known", "k", "", "known pair: D&d, D&l or d&l")
	cmd.Flags().Float64P("large", "D", 0, "large diameter D")
	cmd.Flags().Float64P("small", "d", 0, "small diameter d")
	cmd.Flags().Float64P("length", "l", 0, "cone length l")
	_ = cmd.MarkFlagRequired("angle")
	_ = cmd.MarkFlagRequired("known")
	return cmd
}

func batchCmd(a *app) *cobra.Command {
	var showHistory bool

	cmd := &cobra.Command{
		Use:   "batch [file]",
		Short: "Solve every cone listed in a YAML file and show the calculation history",
		Long: `Solve every cone listed in a YAML file. Each item gives D, d and l, or the
angle and two of them, with optional realLarge and unit:

  - {large: 50, small: 30, length: 100, realLarge: 52}
  - {angle: 11.42, large: 2, small: 1.5, unit: in}`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			const op = "main.batch"

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read batch file: %w", err)
			}
			var inputs []calculator.SpecInput
			if err := yaml.Unmarshal(data, &inputs); err != nil {
				return fmt.Errorf("failed to parse batch file: %w", err)
			}

			items := make([]output.BatchItem, 0, len(inputs))
			for i, in := range inputs {
				item := output.BatchItem{Index: i + 1}
				if in.Unit != "" {
					unit, err := units.Parse(string(in.Unit))
					if err != nil {
						item.Err = err
						items = append(items, item)
						continue
					}
					in.Unit = unit
				}
				item.Outcome, item.Err = a.calc.Solve(in)
				items = append(items, item)
			}

			failed := 0
			for _, item := range items {
				if item.Err != nil {
					failed++
				}
			}
			a.logger.Info("batch solved",
				zap.String("op", op),
				zap.Int("items", len(items)),
				zap.Int("failed", failed),
			)

			if err := output.WriteBatch(a.out, a.outputFormat, a.loc, items); err != nil {
				return err
			}
			if !showHistory {
				return nil
			}
			if a.outputFormat == constants.OutputFormatPretty {
				fmt.Fprintln(a.out)
			}
			return output.WriteHistory(a.out, a.outputFormat, a.loc, a.calc.History(a.conf.HistoryLimit()))
		},
	}

	cmd.Flags().BoolVar(&showHistory, "history", true, "print the calculation history after the results")
	return cmd
}

func supportCmd(a *app) *cobra.Command {
	var angle float64

	cmd := &cobra.Command{
		Use:   "support",
		Short: "Compute the compound rest angle for a cone angle",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := a.calc.Machining(calculator.MachiningInput{AngleDegrees: &angle})
			if err != nil {
				return a.solverError(err)
			}
			return output.WriteMachining(a.out, a.outputFormat, a.loc, result)
		},
	}

	cmd.Flags().Float64VarP(&angle, "angle", "a", 0, "included cone angle α in degrees")
	_ = cmd.MarkFlagRequired("angle")
	return cmd
}

func cuttingCmd(a *app) *cobra.Command {
	var diameter, rpm float64

	cmd := &cobra.Command{
		Use:   "cutting",
		Short: "Compute cutting speed and table feed for a spindle speed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := a.calc.Machining(calculator.MachiningInput{
				Diameter:   &diameter,
				RPM:        &rpm,
				FeedPerRev: optionalFloat(cmd, "feed"),
			})
			if err != nil {
				return a.solverError(err)
			}
			return output.WriteMachining(a.out, a.outputFormat, a.loc, result)
		},
	}

	cmd.Flags().Float64VarP(&diameter, "diameter", "D", 0, "workpiece diameter")
	cmd.Flags().Float64VarP(&rpm, "rpm", "n", 0, "spindle speed in revolutions per minute")
	cmd.Flags().Float64P("feed", "f", 0, "feed per revolution")
	_ = cmd.MarkFlagRequired("diameter")
	_ = cmd.MarkFlagRequired("rpm")
	return cmd
}

func profileCmd(a *app) *cobra.Command {
	var large, small, length float64
	var steps int
	var rings bool

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Print the side outline and optional 3D ring vertices of a cone",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := cone.Cone{LargeDiameter: large, SmallDiameter: small, Length: length}
			outline, err := cone.Outline(c)
			if err != nil {
				return a.solverError(err)
			}
			var vertices []cone.Point3
			if rings {
				vertices, err = cone.Rings(c, steps)
				if err != nil {
					return a.solverError(err)
				}
			}
			return output.WriteProfile(a.out, a.outputFormat, a.calc.DefaultUnit(), outline, vertices)
		},
	}

	cmd.Flags().Float64VarP(&large, "large", "D", 0, "large diameter D")
	cmd.Flags().Float64VarP(&small, "small", "d", 0, "small diameter d")
	cmd.Flags().Float64VarP(&length, "length", "l", 0, "cone length l")
	cmd.Flags().IntVar(&steps, "steps", constants.DefaultRingSteps, "vertices per ring")
	cmd.Flags().BoolVar(&rings, "rings", false, "include the 3D ring vertices")
	_ = cmd.MarkFlagRequired("large")
	_ = cmd.MarkFlagRequired("small")
	_ = cmd.MarkFlagRequired("length")
	return cmd
}
