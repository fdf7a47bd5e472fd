/*
Copyright © 2019 the GridCat authors.
This file is part of GridCat.

GridCat is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

GridCat is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with GridCat.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package gridcatutil holds the configuration and command-line
// interface for the gridcat tool.
package gridcatutil

import (
	"fmt"
	"os"

	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/gridcat"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to gridcat.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "vars",
			usage: `
              vars selects the data variables to catalog by name.
              An empty list selects all of them.`,
			defaultVal: []string{},
			flagsets:   []*pflag.FlagSet{infoCmd.Flags()},
		},
		{
			name: "steps",
			usage: `
              steps selects timestep indices to retain, in the order
              given. An empty list retains every step.`,
			defaultVal: []int{},
			flagsets:   []*pflag.FlagSet{infoCmd.Flags()},
		},
		{
			name: "lazy",
			usage: `
              lazy defers coordinate bounds and cell-area reads until
              they are first accessed instead of reading them during
              the scan.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{infoCmd.Flags()},
		},
		{
			name: "max_chunk_cache",
			usage: `
              max_chunk_cache caps the per-variable chunk cache sizing
              in bytes.`,
			defaultVal: 64 << 20,
			flagsets:   []*pflag.FlagSet{infoCmd.Flags()},
		},
		{
			name: "institution",
			usage: `
              institution is used when the dataset carries no
              institution attribute.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{infoCmd.Flags()},
		},
		{
			name: "model",
			usage: `
              model is used when the dataset carries no source
              attribute.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{infoCmd.Flags()},
		},
		{
			name:      "quiet",
			shorthand: "q",
			usage: `
              quiet suppresses scan warnings.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
	}

	Cfg = viper.New()
	Cfg.SetEnvPrefix("GRIDCAT")
	Cfg.AutomaticEnv()

	for _, option := range options {
		for _, set := range option.flagsets {
			switch option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, option.defaultVal.(string), option.usage)
				} else {
					set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
				}
			case []string:
				if option.shorthand == "" {
					set.StringSlice(option.name, option.defaultVal.([]string), option.usage)
				} else {
					set.StringSliceP(option.name, option.shorthand, option.defaultVal.([]string), option.usage)
				}
			case bool:
				if option.shorthand == "" {
					set.Bool(option.name, option.defaultVal.(bool), option.usage)
				} else {
					set.BoolP(option.name, option.shorthand, option.defaultVal.(bool), option.usage)
				}
			case int:
				if option.shorthand == "" {
					set.Int(option.name, option.defaultVal.(int), option.usage)
				} else {
					set.IntP(option.name, option.shorthand, option.defaultVal.(int), option.usage)
				}
			case []int:
				if option.shorthand == "" {
					set.IntSlice(option.name, option.defaultVal.([]int), option.usage)
				} else {
					set.IntSliceP(option.name, option.shorthand, option.defaultVal.([]int), option.usage)
				}
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(infoCmd)
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("gridcat: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "gridcat",
	Short: "A grid-model catalog builder for gridded scientific datasets.",
	Long: `gridcat scans self-describing gridded datasets and reconstructs their
semantic grid model: which variables are coordinate axes and which carry
field data, the horizontal grid topology, the vertical coordinate system,
and the time axis.

Configuration can be changed by using a configuration file (and providing
the path to the file using the --config flag), by using command-line
arguments, or by setting environment variables in the format 'GRIDCAT_var'
where 'var' is the name of the variable to be set.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of gridcat.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("gridcat v%s\n", gridcat.Version)
	},
	DisableAutoGenTag: true,
}

var infoCmd = &cobra.Command{
	Use:   "info [dataset files]",
	Short: "Print the grid model of one or more datasets.",
	Long: `info scans each given dataset and prints its catalog: grids,
vertical axes, the time axis, and the data variables bound to them.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := scanConfig(Cfg)
		if err != nil {
			return err
		}
		for _, path := range args {
			c, err := scanFile(path, cfg)
			if err != nil {
				return err
			}
			if len(args) > 1 {
				fmt.Fprintf(cmd.OutOrStdout(), "%s:\n", path)
			}
			writeCatalog(cmd.OutOrStdout(), c)
		}
		return nil
	},
	DisableAutoGenTag: true,
}

// scanConfig assembles the scan configuration from the option values.
func scanConfig(cfg *viper.Viper) (gridcat.Config, error) {
	steps, err := cast.ToIntSliceE(cfg.Get("steps"))
	if err != nil {
		return gridcat.Config{}, fmt.Errorf("gridcat: invalid steps selection: %v", err)
	}
	c := gridcat.Config{
		Log:                logrus.StandardLogger(),
		MaxChunkCacheBytes: cfg.GetInt64("max_chunk_cache"),
		LazyCoordinates:    cfg.GetBool("lazy"),
		DefaultInstitution: cfg.GetString("institution"),
		DefaultModel:       cfg.GetString("model"),
	}
	if cfg.GetBool("quiet") {
		c.Warnings = func(string) {}
	}
	names := cfg.GetStringSlice("vars")
	if len(names) > 0 || len(steps) > 0 {
		c.Query = &gridcat.Query{Names: names, TimeSteps: steps}
	}
	return c, nil
}

func scanFile(path string, cfg gridcat.Config) (*gridcat.Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}
	b, err := gridcat.OpenCDF(f, fi.Size())
	if err != nil {
		return nil, err
	}
	return gridcat.Scan(b, cfg)
}
