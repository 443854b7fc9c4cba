package cli

import (
	"fmt"
	"math"
	"strings"

	"github.com/spf13/cobra"

	"ta-kernels/internal/analysis/indicators"
	"ta-kernels/pkg/utils"
)

type paramInfo struct {
	Name    string   `json:"name"`
	Kind    string   `json:"kind"`
	Default float64  `json:"default"`
	Min     *float64 `json:"min,omitempty"`
	Max     *float64 `json:"max,omitempty"`
}

type kernelInfo struct {
	Tag         string      `json:"tag"`
	Aliases     []string    `json:"aliases,omitempty"`
	Group       string      `json:"group"`
	Description string      `json:"description"`
	Inputs      []string    `json:"inputs"`
	Params      []paramInfo `json:"params"`
}

func finite(v float64) *float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return nil
	}
	return &v
}

func describeKernel(k indicators.Kernel) kernelInfo {
	info := kernelInfo{
		Tag:         k.Tag,
		Aliases:     k.Aliases,
		Group:       string(k.Group),
		Description: k.Description,
		Inputs:      make([]string, len(k.Inputs)),
		Params:      make([]paramInfo, len(k.Schema)),
	}
	for i, r := range k.Inputs {
		info.Inputs[i] = string(r)
	}
	for i, p := range k.Schema {
		info.Params[i] = paramInfo{
			Name:    p.Name,
			Kind:    p.Kind.String(),
			Default: p.Default,
			Min:     finite(p.Min),
			Max:     finite(p.Max),
		}
	}
	return info
}

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the registered kernels and their parameters",
		Example: `  takernels list
  takernels list --group volume
  takernels list --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			group, _ := cmd.Flags().GetString("group")
			verbose, _ := cmd.Flags().GetBool("verbose")
			group = strings.ToLower(strings.TrimSpace(group))

			var kernels []indicators.Kernel
			for _, k := range indicators.Kernels() {
				if group == "" || string(k.Group) == group {
					kernels = append(kernels, k)
				}
			}
			if group != "" && len(kernels) == 0 {
				return fmt.Errorf("unknown group %q (want trend, volatility, volume, or momentum)", group)
			}

			if output.IsJSON() {
				infos := make([]kernelInfo, len(kernels))
				for i, k := range kernels {
					infos[i] = describeKernel(k)
				}
				return output.JSON(infos)
			}

			output.Printf("%s %s %s %s\n",
				output.Header(utils.PadRight("TAG", 6)),
				output.Header(utils.PadRight("GROUP", 11)),
				output.Header(utils.PadRight("INPUTS", 22)),
				output.Header("PARAMS"))
			for _, k := range kernels {
				output.Printf("%s %s %s %s\n",
					utils.PadRight(k.Tag, 6),
					utils.PadRight(string(k.Group), 11),
					utils.PadRight(FormatRoles(k.Inputs), 22),
					FormatSchema(k.Schema))
				output.Printf("       %s\n", output.DimText(k.Description))
				if verbose {
					for _, p := range k.Schema {
						output.Printf("       %s %s %s default %s\n",
							utils.PadRight(p.Name, 14), utils.PadRight(p.Kind.String(), 5),
							utils.PadRight(FormatBounds(p), 14), utils.FormatParam(p.Default))
					}
				}
			}
			return nil
		},
	}
	cmd.Flags().String("group", "", "only list kernels of this group (trend, volatility, volume, momentum)")
	cmd.Flags().BoolP("verbose", "v", false, "show parameter types and bounds")
	return cmd
}
