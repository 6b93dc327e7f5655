package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/scvi-aria/deko/internal/domain"
	"github.com/scvi-aria/deko/internal/template"
)

// TemplateInfo describes one registered vendor template.
type TemplateInfo struct {
	Vendor  string      `json:"vendor"`
	Name    string      `json:"name"`
	TotalMS int64       `json:"total_ms"`
	Stages  []StageInfo `json:"stages"`
}

// StageInfo is one row of a template's stage table.
type StageInfo struct {
	Stage      domain.Stage `json:"stage"`
	DurationMS int64        `json:"duration_ms"`
	Label      string       `json:"label"`
}

// NewTemplatesCommand creates the templates command.
func NewTemplatesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "templates",
		Short:         "List vendor templates and their stage tables",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			infos := ListTemplates()
			if rootOpts.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), infos, nil)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, info := range infos {
				fmt.Fprintf(tw, "%s\t%s\ttotal %dms\t\n", info.Vendor, info.Name, info.TotalMS)
				for _, s := range info.Stages {
					fmt.Fprintf(tw, "  %s\t%dms\t%s\t\n", s.Stage, s.DurationMS, s.Label)
				}
			}
			return tw.Flush()
		},
	}
}

// ListTemplates describes every registered template, sorted by vendor key.
func ListTemplates() []TemplateInfo {
	vendors := template.Vendors()
	infos := make([]TemplateInfo, 0, len(vendors))
	for _, key := range vendors {
		tpl := template.ForVendor(key)
		table := tpl.Stages()
		info := TemplateInfo{
			Vendor:  key,
			Name:    tpl.Name(),
			TotalMS: table.Total().Milliseconds(),
		}
		for _, s := range append([]domain.Stage{domain.StageIdle}, domain.Sequence[:]...) {
			cfg := table.Get(s)
			info.Stages = append(info.Stages, StageInfo{
				Stage:      s,
				DurationMS: cfg.Duration.Milliseconds(),
				Label:      cfg.Label,
			})
		}
		infos = append(infos, info)
	}
	return infos
}
