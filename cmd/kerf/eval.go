// Eval command for the kerf CLI: evaluate a sketch script and print the
// resulting geometry.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/chazu/kerf/pkg/engine"
	"github.com/chazu/kerf/pkg/entity"
	"github.com/chazu/kerf/pkg/sketch"
)

var evalCmd = &cobra.Command{
	Use:   "eval FILE",
	Short: "Evaluate a sketch script",
	Long: `Evaluate a kerf sketch script and print the resulting entities.
Pass - as FILE to read the script from standard input.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		source, err := readSource(args[0])
		if err != nil {
			return err
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		eng := engine.NewEngine()
		eng.Tolerance = cfg.GetFloat64(cfgKeyTolerance)
		eng.MaxIterations = cfg.GetInt(cfgKeyMaxIterations)

		mgr, evalErrs, err := eng.Evaluate(string(source))
		if err != nil {
			return err
		}
		if len(evalErrs) > 0 {
			for _, e := range evalErrs {
				fmt.Fprintln(os.Stderr, e.Error())
			}
			return fmt.Errorf("evaluation failed with %d error(s)", len(evalErrs))
		}

		if flagJSON {
			return printJSON(cmd.OutOrStdout(), mgr)
		}
		printEntities(cmd.OutOrStdout(), mgr)
		return nil
	},
}

func init() {
	evalCmd.Flags().BoolVar(&flagJSON, "json", false, "output entities as JSON")
}

func readSource(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func printEntities(w io.Writer, mgr *sketch.Manager) {
	for _, id := range mgr.EntityIDs() {
		e, _ := mgr.Entity(id)
		fmt.Fprintf(w, "%-4s %s\n", id, describe(e))
	}
	fmt.Fprintf(w, "%d entities, %d constraints\n", mgr.Len(), mgr.Solver().Len())
}

func describe(e entity.Entity) string {
	switch v := e.(type) {
	case *entity.Point:
		return fmt.Sprintf("point (%g, %g)", v.X, v.Y)
	case *entity.Line:
		return fmt.Sprintf("line (%g, %g) -> (%g, %g) length %g",
			v.Start.X, v.Start.Y, v.End.X, v.End.Y, v.Length())
	case *entity.Circle:
		return fmt.Sprintf("circle center (%g, %g) radius %g",
			v.Center.X, v.Center.Y, v.Radius)
	case *entity.Arc:
		return fmt.Sprintf("arc center (%g, %g) radius %g angles [%g, %g]",
			v.Center.X, v.Center.Y, v.Radius, v.StartAngle, v.EndAngle)
	case *entity.Spline:
		return fmt.Sprintf("spline degree %d with %d control points",
			v.Degree, len(v.ControlPoints))
	default:
		return fmt.Sprintf("%s", e.Kind())
	}
}

// entityRecord is the JSON shape of one sketch entity.
type entityRecord struct {
	ID     string       `json:"id"`
	Kind   string       `json:"kind"`
	Points [][2]float64 `json:"points,omitempty"`
	Radius float64      `json:"radius,omitempty"`
	Angles []float64    `json:"angles,omitempty"`
	Degree int          `json:"degree,omitempty"`
}

func printJSON(w io.Writer, mgr *sketch.Manager) error {
	records := make([]entityRecord, 0, mgr.Len())
	for _, id := range mgr.EntityIDs() {
		e, _ := mgr.Entity(id)
		rec := entityRecord{ID: id, Kind: e.Kind().String()}
		switch v := e.(type) {
		case *entity.Point:
			rec.Points = [][2]float64{{v.X, v.Y}}
		case *entity.Line:
			rec.Points = [][2]float64{{v.Start.X, v.Start.Y}, {v.End.X, v.End.Y}}
		case *entity.Circle:
			rec.Points = [][2]float64{{v.Center.X, v.Center.Y}}
			rec.Radius = v.Radius
		case *entity.Arc:
			rec.Points = [][2]float64{{v.Center.X, v.Center.Y}}
			rec.Radius = v.Radius
			rec.Angles = []float64{v.StartAngle, v.EndAngle}
		case *entity.Spline:
			for _, cp := range v.ControlPoints {
				rec.Points = append(rec.Points, [2]float64{cp.X, cp.Y})
			}
			rec.Degree = v.Degree
		}
		records = append(records, rec)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}
