// SPDX-License-Identifier: GPL-2.0-or-later

package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/ealekseyev/E90RemoteStart/pkg/canbus"
	"github.com/ealekseyev/E90RemoteStart/pkg/register"
	"github.com/spf13/cobra"
)

var (
	surveyDuration     float64
	surveyThreshold    float64
	surveyOutput       string
	surveyBlacklistOut string
	surveyVerbose      bool
	surveyQuiet        bool
)

var surveyCmd = &cobra.Command{
	Use:   "survey",
	Short: "Survey nibble changes to find counters and checksums",
	Long: `Monitor the bus for a fixed duration and count how often each nibble of
each identifier changes between consecutive frames.

Nibbles that change in a large fraction of frames are counters, checksums
or sensor noise; they drown out meaningful state changes in the watch view.
The survey classifies them against a change-rate threshold and suggests a
blacklist, in the JSON format the watch command loads:

  canmon survey --port /dev/ttyUSB0 -d 60 --blacklist-out blacklist.json
  canmon watch --port /dev/ttyUSB0 --blacklist blacklist.json

Ctrl+C stops the survey early and analyzes what was collected.`,
	RunE: runSurvey,
}

func init() {
	rootCmd.AddCommand(surveyCmd)
	surveyCmd.Flags().Float64VarP(&surveyDuration, "duration", "d", 30, "Monitoring duration in seconds")
	surveyCmd.Flags().Float64VarP(&surveyThreshold, "threshold", "t", 0.1, "Change rate threshold for blacklisting (0.1 = 10%)")
	surveyCmd.Flags().StringVarP(&surveyOutput, "output", "o", "", "Write full analysis JSON to this file")
	surveyCmd.Flags().StringVarP(&surveyBlacklistOut, "blacklist-out", "c", "", "Write suggested blacklist config to this file")
	surveyCmd.Flags().BoolVarP(&surveyVerbose, "verbose", "v", false, "Announce each new identifier as it appears")
	surveyCmd.Flags().BoolVarP(&surveyQuiet, "quiet", "q", false, "Only write output files, no report")
}

func runSurvey(cmd *cobra.Command, args []string) error {
	conn, connInfo, err := OpenConnection()
	if err != nil {
		return err
	}
	defer conn.Close()

	if !surveyQuiet {
		fmt.Printf("Monitoring %s for %g seconds...\n", connInfo, surveyDuration)
		fmt.Printf("Press Ctrl+C to stop early.\n\n")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	stats := register.NewStats()
	elapsed, err := collectSurvey(ctx, conn, stats, time.Duration(surveyDuration*float64(time.Second)))
	if err != nil {
		return err
	}

	if !surveyQuiet {
		fmt.Printf("\nMonitoring complete. Duration: %.1fs, Total frames: %d\n\n",
			elapsed.Seconds(), stats.TotalFrames())
	}

	if stats.TotalFrames() == 0 {
		fmt.Println("No CAN frames received.")
		return nil
	}

	analysis := stats.Analyze(elapsed, surveyThreshold)

	if !surveyQuiet {
		fmt.Print(analysis.Report())
	}

	if surveyOutput != "" {
		data, err := analysis.JSON()
		if err != nil {
			return err
		}
		if err := os.WriteFile(surveyOutput, data, 0o644); err != nil {
			return fmt.Errorf("writing results: %w", err)
		}
		if !surveyQuiet {
			fmt.Printf("\nFull results saved to: %s\n", surveyOutput)
		}
	}

	blacklist := analysis.BlacklistConfig()
	if surveyBlacklistOut != "" {
		data, err := json.MarshalIndent(blacklist, "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(surveyBlacklistOut, data, 0o644); err != nil {
			return fmt.Errorf("writing blacklist config: %w", err)
		}
		if !surveyQuiet {
			fmt.Printf("Blacklist config saved to: %s\n", surveyBlacklistOut)
		}
	}

	if !surveyQuiet && len(blacklist) > 0 && surveyBlacklistOut == "" {
		data, _ := json.MarshalIndent(blacklist, "", "  ")
		fmt.Printf("\nSuggested blacklist config:\n%s\n", data)
	}

	return nil
}

// collectSurvey feeds frames into stats until the deadline passes, the
// context is cancelled, or the stream ends. It returns the time actually
// spent collecting.
func collectSurvey(ctx context.Context, conn Connection, stats *register.Stats, duration time.Duration) (time.Duration, error) {
	chunks := make(chan []byte, 64)
	readErr := make(chan error, 1)

	go func() {
		buf := make([]byte, 256)
		for {
			n, err := conn.Read(buf)
			if n > 0 {
				chunk := make([]byte, n)
				copy(chunk, buf[:n])
				select {
				case chunks <- chunk:
				case <-ctx.Done():
					return
				}
			}
			if err != nil {
				readErr <- err
				return
			}
		}
	}()

	var buf canbus.LineBuffer
	start := time.Now()
	deadline := time.NewTimer(duration)
	defer deadline.Stop()

	for {
		select {
		case <-ctx.Done():
			if !surveyQuiet {
				fmt.Println("\nMonitoring stopped early.")
			}
			return time.Since(start), nil

		case <-deadline.C:
			return time.Since(start), nil

		case err := <-readErr:
			if errors.Is(err, io.EOF) || errors.Is(err, ErrConnectionClosed) {
				return time.Since(start), nil
			}
			return time.Since(start), fmt.Errorf("stream error: %v", err)

		case chunk := <-chunks:
			now := time.Now()
			for _, line := range buf.Split(chunk) {
				f, ok := canbus.ParseLine(line)
				if !ok {
					continue
				}
				if stats.Observe(f, now) && surveyVerbose && !surveyQuiet {
					fmt.Printf("[+] New CAN ID: %s\n", f.ID)
				}
			}
		}
	}
}
