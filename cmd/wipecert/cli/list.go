package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/oxygenesis/wipecert/internal/domain"
	"github.com/oxygenesis/wipecert/internal/storage"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List certificates in the registry",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	repo, err := storage.OpenSQLite(cfg.RegistryPath)
	if err != nil {
		return err
	}
	defer repo.Close()

	bundles, err := repo.List()
	if err != nil {
		return err
	}

	if jsonOut {
		return json.NewEncoder(os.Stdout).Encode(bundles)
	}

	if len(bundles) == 0 {
		fmt.Println("no certificates")
		return nil
	}
	for _, b := range bundles {
		c := b.Certificate
		line := fmt.Sprintf("%s  %s  %-8s  %-25s  %s", c.ID, c.Timestamp, c.ExecutionMode, c.WipeMethod, c.DeviceID)
		if c.ExecutionMode == domain.ModeDry {
			color.Yellow(line)
		} else {
			fmt.Println(line)
		}
	}
	return nil
}
