// Command corestate runs a demo container system with the monitoring server
// enabled, so that the HTTP API can be explored interactively.
package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/pkg/browser"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/gurkanfikretgunak/corestate/core"
	"github.com/gurkanfikretgunak/corestate/system"
)

var (
	monitorPort int
	outputFile  string
	openBrowser bool
	verbose     bool
)

var rootCmd = &cobra.Command{
	Use:   "corestate",
	Short: "Run a demo container system with monitoring enabled",
	Run: func(_ *cobra.Command, _ []string) {
		run()
	},
}

func init() {
	rootCmd.Flags().IntVar(&monitorPort, "monitor-port", 0,
		"port for the monitoring server, random when 0")
	rootCmd.Flags().StringVar(&outputFile, "output", "",
		"output file name for the data recorder")
	rootCmd.Flags().BoolVar(&openBrowser, "open-browser", false,
		"open the monitoring API in a browser")
	rootCmd.Flags().BoolVar(&verbose, "verbose", false,
		"log every dispatched event and emitted state")
}

func run() {
	// A missing .env file is fine; the defaults apply.
	_ = godotenv.Load()

	builder := system.MakeBuilder()
	if monitorPort > 0 {
		builder = builder.WithMonitorPort(monitorPort)
	}
	if outputFile != "" {
		builder = builder.WithOutputFileName(outputFile)
	}

	sys := builder.Build()

	container := core.MakeContainerBuilder().
		WithName("DemoContainer").
		Build()
	sys.RegisterContainer(container)

	if verbose {
		container.AcceptHook(core.NewEventLogger(
			log.New(os.Stderr, "", log.LstdFlags)))
	}

	container.Subscribe(func(s core.State) {
		fmt.Fprintf(os.Stderr, "state: %s\n", s.StateKind())
	})

	container.Dispatch(core.NewLoadDataEvent())
	container.Dispatch(core.UpdateDataEvent{
		Data:         "Demo data from the command line",
		ValidateData: true,
	})
	container.Dispatch(core.NewLoadDataEvent())

	if openBrowser && monitorPort > 0 {
		url := fmt.Sprintf("http://localhost:%d/api/containers", monitorPort)
		if err := browser.OpenURL(url); err != nil {
			fmt.Fprintf(os.Stderr, "cannot open browser: %s\n", err)
		}
	}

	fmt.Fprintln(os.Stderr, "Press Ctrl+C to stop.")

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs

	sys.Terminate()

	// Run the registered flush handlers before the process ends.
	atexit.Exit(0)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		atexit.Exit(1)
	}
}
