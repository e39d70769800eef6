package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/klever-hub/kleverblockchain-certificates/anchor"
	"github.com/klever-hub/kleverblockchain-certificates/application/server"
	"github.com/klever-hub/kleverblockchain-certificates/cli"
	"github.com/spf13/cobra"
)

var serveCmd = cli.NewRunCommand("serve", "certree verification server", serveRunFunc)

func init() {
	RootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", "", "Listen address, overriding the configuration")
	serveCmd.Flags().BoolP("pid", "p", false, "Write down the process id to certree.pid in the current working directory")
}

func serveRunFunc(cmd *cobra.Command, args []string) error {
	app, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	if pid, _ := cmd.Flags().GetBool("pid"); pid {
		writePID()
	}
	addr := app.Config.Server.Address
	if a, _ := cmd.Flags().GetString("addr"); a != "" {
		addr = a
	}
	var anchors anchor.Ledger
	if app.Config.Server.ServeAnchors {
		anchors = app.Anchors
	}
	srv := server.New(app.DB, app.Verifier, anchors, app.Logger.With("service", "server"))
	if _, err := srv.ListenAndServe(addr); err != nil {
		return err
	}

	// run the server until receiving an interrupt signal
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	<-ch
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

func writePID() {
	path := filepath.Join(".", "certree.pid")
	if err := os.WriteFile(path, []byte(fmt.Sprint(os.Getpid())), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Cannot write pid file: %v\n", err)
	}
}
