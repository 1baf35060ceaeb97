// Copyright 2020-2021 Dolthub, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command hectord is the single-binary server spec.md §6 describes:
// it wires a Domain to a Server and exposes it over TCP, WebSocket,
// and HTTP. It runs a single worker: HTTP/WebSocket listen on the
// --port value and TCP on --port plus one.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/dolthub/hector/domain"
	"github.com/dolthub/hector/server"
	"github.com/dolthub/hector/transport"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "hectord",
	Short: "incremental worst-case-optimal join query engine",
	RunE:  run,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $HOME/.hectord.yaml)")
	rootCmd.Flags().Int("port", 4000, "HTTP/WebSocket port; the TCP listener binds port+1")
	rootCmd.Flags().Bool("manual-advance", false, "disable auto-advance-to-next_tx after Transact")
	rootCmd.Flags().Bool("enable-cli", false, "run an interactive stdin REPL dispatching requests against the local server")
	rootCmd.Flags().Bool("enable-history", false, "reserved for flag compatibility; the engine always retains full trace history")
	rootCmd.Flags().Bool("enable-optimizer", false, "reserved for flag compatibility; no plan rewriter is implemented")
	rootCmd.Flags().Bool("enable-meta", false, "install the OpenTelemetry stdout metrics exporter")

	_ = viper.BindPFlag("port", rootCmd.Flags().Lookup("port"))
	_ = viper.BindPFlag("manual_advance", rootCmd.Flags().Lookup("manual-advance"))
	_ = viper.BindPFlag("enable_cli", rootCmd.Flags().Lookup("enable-cli"))
	_ = viper.BindPFlag("enable_history", rootCmd.Flags().Lookup("enable-history"))
	_ = viper.BindPFlag("enable_optimizer", rootCmd.Flags().Lookup("enable-optimizer"))
	_ = viper.BindPFlag("enable_meta", rootCmd.Flags().Lookup("enable-meta"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".hectord")
	}
	viper.SetEnvPrefix("hectord")
	viper.AutomaticEnv()
	_ = viper.ReadInConfig()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	log := logrus.NewEntry(logrus.New())

	port := viper.GetInt("port")
	manualAdvance := viper.GetBool("manual_advance")
	enableCLI := viper.GetBool("enable_cli")
	enableMeta := viper.GetBool("enable_meta")
	if viper.GetBool("enable_history") {
		log.Info("hectord: --enable-history is accepted for compatibility; full history is always retained")
	}
	if viper.GetBool("enable_optimizer") {
		log.Info("hectord: --enable-optimizer is accepted for compatibility; no plan rewriter is implemented")
	}

	if enableMeta {
		shutdown, err := server.InitMeterProvider(10 * time.Second)
		if err != nil {
			return fmt.Errorf("hectord: failed to install metrics exporter: %w", err)
		}
		defer shutdown(context.Background())
	}

	d := domain.New(log)
	var opts []server.Option
	if manualAdvance {
		opts = append(opts, server.WithManualAdvance())
	}
	s := server.New(d, log, opts...)
	defer s.Close()

	addr := fmt.Sprintf(":%d", port)
	tcpAddr := fmt.Sprintf(":%d", port+1)

	signalCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	group, ctx := errgroup.WithContext(signalCtx)

	httpSrv := &http.Server{Addr: addr, Handler: transport.NewHTTPHandler(s, log)}
	group.Go(func() error {
		log.Infof("hectord: http/websocket listening on %s", addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("hectord: http listen %s: %w", addr, err)
		}
		return nil
	})

	tcpSrv := transport.NewTCPServer(s, log)
	group.Go(func() error {
		log.Infof("hectord: tcp listening on %s", tcpAddr)
		return tcpSrv.Serve(tcpAddr)
	})

	if enableCLI {
		group.Go(func() error {
			runCLI(ctx, s, log)
			return nil
		})
	}

	<-ctx.Done()
	_ = httpSrv.Close()
	_ = tcpSrv.Close()
	return group.Wait()
}

// runCLI reads newline-delimited Request JSON from stdin and writes
// Result JSON to stdout, dispatched against the in-process server
// directly (no network round trip).
func runCLI(ctx context.Context, s *server.Server, log *logrus.Entry) {
	decoder := json.NewDecoder(os.Stdin)
	encoder := json.NewEncoder(os.Stdout)
	const token = "cli"
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		var req transport.Request
		if err := decoder.Decode(&req); err != nil {
			return
		}
		result := transport.Dispatch(s, token, req)
		if err := encoder.Encode(result); err != nil {
			log.WithError(err).Warn("hectord: failed writing cli response")
			return
		}
	}
}
