package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/setanarut/imgcluster"
	"github.com/setanarut/imgcluster/archive"
	"github.com/setanarut/imgcluster/device"
	"github.com/spf13/cobra"
)

var version = "0.1.0"

var (
	dataDir     string
	resultsPath string
	archivePath string
	verbose     bool
)

var rootCmd = &cobra.Command{
	Use:   "imgcluster",
	Short: "Cluster a folder of JPEG images with PCA, KMeans and DBSCAN",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := zerolog.InfoLevel
		if verbose {
			level = zerolog.DebugLevel
		}
		zerolog.SetGlobalLevel(level)
	},
	Version: version,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Load, reduce and cluster the images and write the results file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p := imgcluster.NewPipeline(dataDir)
		p.ResultsPath = resultsPath
		p.PalettePath = filepath.Join(filepath.Dir(resultsPath), "clusterPalette.png")

		r, err := p.Run()
		if errors.Is(err, device.ErrUnavailable) {
			log.Error().Err(err).Msg("required packages not found, aborting")
			os.Exit(1)
		}
		if err != nil {
			return err
		}

		if archivePath != "" {
			a, err := archive.Open(archivePath)
			if err != nil {
				return err
			}
			defer a.Close()
			id, err := a.Record(r)
			if err != nil {
				return err
			}
			log.Info().Int64("run", id).Str("archive", archivePath).Msg("run archived")
		}

		fmt.Println("Kmeans bins   ", r.Bins)
		fmt.Println("Kmeans counts ", r.Counts)
		fmt.Printf("Results written to %s\n", resultsPath)
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print a summary of a results file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := imgcluster.ReadResults(resultsPath)
		if err != nil {
			return err
		}
		files, _ := m["imagesFilenameList"].([]any)
		fmt.Printf("images:           %d\n", len(files))
		fmt.Printf("device context:   %v\n", m["device_context"])
		fmt.Printf("kmeans clusters:  %v\n", m["imageClusters"])
		fmt.Printf("dbscan clusters:  %v\n", m["imageClusters_db"])
		fmt.Printf("kmeans counts:    %v\n", m["counts"])
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("imgcluster version %s\n", version)
		fmt.Printf("Go version: %s\n", runtime.Version())
		fmt.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	},
}

func init() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&resultsPath, "out", "o", imgcluster.DefaultResultsPath, "Results JSON file")

	runCmd.Flags().StringVarP(&dataDir, "data", "d", "data", "Directory of .jpg images")
	runCmd.Flags().StringVar(&archivePath, "archive", "", "Optional SQLite archive of runs")

	rootCmd.AddCommand(runCmd, showCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("imgcluster failed")
		os.Exit(1)
	}
}
