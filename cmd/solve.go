/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"io/ioutil"
	"os"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"

	"github.com/roshansamuel/gpu-saras/params"
	"github.com/roshansamuel/gpu-saras/solver"
)

// solveCmd represents the solve command
var solveCmd = &cobra.Command{
	Use:   "solve",
	Short: "Run a simulation described by a YAML input file",
	Long: `
Reads the input-parameter record from a YAML file, builds the process
grid and fields, and advances the solution to the final time.

gpu-saras solve -i input.yaml`,
	Run: func(cmd *cobra.Command, args []string) {
		var (
			err       error
			inputFile string
			profRun   bool
		)
		if inputFile, err = cmd.Flags().GetString("input"); err != nil {
			panic(err)
		}
		if profRun, err = cmd.Flags().GetBool("profile"); err != nil {
			panic(err)
		}
		if profRun {
			defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
		}

		var data []byte
		if data, err = ioutil.ReadFile(inputFile); err != nil {
			fmt.Printf("Unable to read input file %s: %v\n", inputFile, err)
			os.Exit(1)
		}

		p := &params.Parameters{}
		if err = p.Parse(data); err != nil {
			fmt.Printf("Unable to parse input file %s: %v\n", inputFile, err)
			os.Exit(1)
		}

		if err = solver.Run(p); err != nil {
			fmt.Printf("Run failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(solveCmd)
	solveCmd.Flags().StringP("input", "i", "input.yaml", "YAML input parameter file")
	solveCmd.Flags().BoolP("profile", "p", false, "write a CPU profile of the run")
}
