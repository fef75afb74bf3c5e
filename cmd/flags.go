package cmd

import (
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/tempusbreve/gce-metadata/internal/gce"
)

// selectorValue is a bool-style flag that appends its selectors to a shared
// list each time it is set, keeping command-line order.
type selectorValue struct {
	selected *[]gce.Selector
	adds     []gce.Selector
}

func (v *selectorValue) String() string { return "false" }
func (v *selectorValue) Type() string   { return "bool" }

func (v *selectorValue) Set(s string) error {
	on, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	if on {
		*v.selected = append(*v.selected, v.adds...)
	}
	return nil
}

func addSelectorFlags(cmd *cobra.Command, selected *[]gce.Selector) {
	flags := cmd.Flags()

	for _, spec := range gce.Specs() {
		value := &selectorValue{selected: selected, adds: []gce.Selector{spec.Selector}}
		flags.VarPF(value, spec.Selector.String(), spec.Shorthand, spec.Usage).NoOptDefVal = "true"
	}

	all := &selectorValue{selected: selected, adds: gce.All()}
	flags.VarPF(all, "all", "", "Print every attribute (same as no flags)").NoOptDefVal = "true"

	// -h is taken by --local-hostname, so help is long-form only.
	flags.Bool("help", false, "Show this help")
	cmd.SetGlobalNormalizationFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		if name == "h" {
			name = "help"
		}
		return pflag.NormalizedName(name)
	})
}
