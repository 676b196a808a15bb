package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oggyb/mockmatch/internal/config"
	"github.com/oggyb/mockmatch/internal/logger"
	"github.com/oggyb/mockmatch/internal/service/matching"
)

const app = "matchctl"

var (
	// Used for flags.
	addr    string
	timeout time.Duration
	debug   bool

	cfg = config.New()

	rootCmd = &cobra.Command{
		Use:           app,
		Short:         "matchctl talks to a running mockmatch server and manages its data",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if debug {
				cfg.Log.Level = "debug"
			}
			logger.InitFromConfig(cfg)
		},
	}
)

// Execute executes the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return err
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&addr, "addr", cfg.GRPC.Host+":"+cfg.GRPC.Port, "server address")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 5*time.Second, "per call timeout")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "verbose/debug output")
}

// invoke calls one MatchService method and prints the envelope.
func invoke(cmd *cobra.Command, method string, req map[string]any) error {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	logger.Debug("calling", slog.String("method", method), slog.String("addr", addr))
	out, err := matching.NewClient(conn).Call(ctx, method, req)
	if err != nil {
		return err
	}
	return printResult(cmd, out)
}

func printResult(cmd *cobra.Command, out *structpb.Struct) error {
	b, err := protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(out)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
	return nil
}
