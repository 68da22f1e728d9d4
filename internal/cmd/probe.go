package cmd

import (
	"github.com/hoppxi/fsdim/pkg/ddc"
	"github.com/hoppxi/fsdim/pkg/edid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type probeResult struct {
	Bus      string         `yaml:"bus"`
	Path     string         `yaml:"path"`
	Name     string         `yaml:"name,omitempty"`
	Identity *edid.Identity `yaml:"identity,omitempty"`
	MCCS     string         `yaml:"mccs"`
}

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "List every DDC/CI capable device with its MCCS version",
	RunE: func(cmd *cobra.Command, args []string) error {
		devices, err := ddc.Enumerate()
		if err != nil {
			return err
		}

		var out []probeResult
		for _, d := range devices {
			version, err := d.MCCSVersion()
			if err != nil {
				log.Debug().Err(err).Str("device", d.String()).Msg("no DDC/CI reply")
				_ = d.Close()
				continue
			}
			res := probeResult{Bus: d.BusName(), Path: d.Path, MCCS: version}
			if raw, err := d.ReadEDID(); err == nil {
				if e, err := edid.Parse(raw); err == nil {
					res.Name = e.ProductName
					res.Identity = &e.Identity
				}
			}
			_ = d.Close()
			out = append(out, res)
		}
		return printYAML(cmd, out)
	},
}
