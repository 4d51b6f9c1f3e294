package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"sbomstat/internal/cpe"
	"sbomstat/internal/report"
)

func newMatchCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "match <cpe> <cpe>",
		Short:       "Compare two CPE identifiers field by field",
		Args:        cobra.ExactArgs(2),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := cpe.Parse(args[0])
			if err != nil {
				return err
			}
			b, err := cpe.Parse(args[1])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "A: %s\n   %s\n", a.String(), a.FormattedString())
			fmt.Fprintf(out, "B: %s\n   %s\n", b.String(), b.FormattedString())

			rows := make([][]string, 0, len(cpe.Fields()))
			for _, f := range cpe.Fields() {
				av, bv := a.Get(f), b.Get(f)
				rows = append(rows, []string{f.String(), describe(av), describe(bv)})
			}
			fmt.Fprintln(out, report.Table("", []string{"Field", "A", "B"}, rows, nil, nil))

			if field, mismatch := cpe.Mismatch(a, b); mismatch {
				fmt.Fprintf(out, "No match: first mismatch on %s\n", field)
				return nil
			}
			fmt.Fprintln(out, "Match")
			return nil
		},
	}
}

func describe(v cpe.Value) string {
	if v.Kind() == cpe.KindConcrete {
		return v.Token()
	}
	return fmt.Sprintf("%s (%s)", v.String(), v.Kind())
}
