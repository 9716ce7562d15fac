package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/Jeanphaie/lk-invest/internal/source"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "List the tables of the manifest in import order",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		yellow := color.New(color.FgYellow, color.Bold).SprintFunc()
		cyan := color.New(color.FgCyan).SprintFunc()
		black := color.New(color.FgBlack).SprintFunc()
		green := color.New(color.FgGreen).SprintFunc()
		red := color.New(color.FgRed).SprintFunc()

		manifest, err := loadManifest()
		if err != nil {
			fmt.Printf("error: %s\n", err)
			os.Exit(1)
		}
		var src source.Source
		if location := viper.GetString("source"); location != "" {
			src, err = source.New(context.Background(), location)
			if err != nil {
				fmt.Printf("error: %s\n", err)
				os.Exit(1)
			}
		}
		fmt.Println()
		for i, table := range manifest.Tables {
			fmt.Printf("%2d. %-25s", i+1, yellow(table.Name))
			if src != nil {
				name, rc, err := src.Open(context.Background(), table.Name)
				switch {
				case err == nil:
					rc.Close()
					fmt.Printf(" %s", green(name))
				case errors.Is(err, source.ErrNotFound):
					fmt.Printf(" %s", red("missing, will be skipped"))
				default:
					fmt.Printf(" %s", red(err.Error()))
				}
			}
			fmt.Println()
			if table.PrimaryKey != "" {
				fmt.Printf("%4s%s: %s\n", "", black("primary key"), table.PrimaryKey)
			}
			if len(table.JSONFields) > 0 {
				fmt.Printf("%4s%s: %s\n", "", black("json"), cyan(strings.Join(table.JSONFields, ", ")))
			}
		}
		fmt.Println()
	},
}

func init() {
	rootCmd.AddCommand(tablesCmd)
	tablesCmd.Flags().String("source", "", "check the export files present in this location")
}
