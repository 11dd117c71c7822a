// SPDX-License-Identifier: GPL-2.0-or-later

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.bug.st/serial/enumerator"
)

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List available serial ports",
	Long: `List serial ports with device descriptions.

USB ports include the product name and VID:PID to help pick out the CAN
bridge among other adapters.`,
	RunE: runPorts,
}

func init() {
	rootCmd.AddCommand(portsCmd)
}

func runPorts(cmd *cobra.Command, args []string) error {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return fmt.Errorf("failed to enumerate serial ports: %v", err)
	}

	if len(ports) == 0 {
		fmt.Println("No serial ports found.")
		return nil
	}

	fmt.Println("Available ports:")
	for _, port := range ports {
		if port.IsUSB {
			product := port.Product
			if product == "" {
				product = "USB device"
			}
			fmt.Printf("  %s - %s (%s:%s)\n", port.Name, product, port.VID, port.PID)
		} else {
			fmt.Printf("  %s\n", port.Name)
		}
	}
	return nil
}
