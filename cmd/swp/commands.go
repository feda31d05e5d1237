package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"

	swp "github.com/swp-sim/swp-go"
)

func New() *cli.Command {
	return &cli.Command{
		Name:    "swp",
		Usage:   "stop-and-wait file transfer over a simulated lossy channel",
		Version: "0.1.0",
		Commands: []*cli.Command{
			sendCommand(),
			receiveCommand(),
			generateCommand(),
			compareCommand(),
		},
	}
}

func defaultFlags() []cli.Flag {
	cfg := swp.DefaultConfig()
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "config",
			Usage: "TOML configuration file; flags override its values",
		},
		&cli.StringFlag{
			Name:  "rx-host",
			Usage: "host of the data endpoint",
			Value: cfg.DataHost,
		},
		&cli.IntFlag{
			Name:  "rx-port",
			Usage: "port of the data endpoint",
			Value: int64(cfg.DataPort),
		},
		&cli.StringFlag{
			Name:  "tx-ack-host",
			Usage: "host of the ack endpoint",
			Value: cfg.AckHost,
		},
		&cli.IntFlag{
			Name:  "tx-ack-port",
			Usage: "port of the ack endpoint",
			Value: int64(cfg.AckPort),
		},
		&cli.IntFlag{
			Name:  "seed",
			Usage: "random seed for the loss/delay policy",
			Value: cfg.Seed,
		},
		&cli.IntFlag{
			Name:  "timeout-ms",
			Usage: "per-attempt ack timeout in milliseconds",
			Value: int64(cfg.TimeoutMs),
		},
		&cli.IntFlag{
			Name:  "retries",
			Usage: "retry budget per chunk",
			Value: int64(cfg.MaxRetries),
		},
		&cli.FloatFlag{
			Name:  "loss-data",
			Usage: "loss probability for the data direction",
			Value: cfg.Data.LossProbability,
		},
		&cli.IntFlag{
			Name:  "data-delay-min",
			Usage: "minimum data delay in milliseconds",
			Value: int64(cfg.Data.DelayMinMs),
		},
		&cli.IntFlag{
			Name:  "data-delay-max",
			Usage: "maximum data delay in milliseconds",
			Value: int64(cfg.Data.DelayMaxMs),
		},
		&cli.FloatFlag{
			Name:  "loss-ack",
			Usage: "loss probability for the ack direction",
			Value: cfg.Ack.LossProbability,
		},
		&cli.IntFlag{
			Name:  "ack-delay-min",
			Usage: "minimum ack delay in milliseconds",
			Value: int64(cfg.Ack.DelayMinMs),
		},
		&cli.IntFlag{
			Name:  "ack-delay-max",
			Usage: "maximum ack delay in milliseconds",
			Value: int64(cfg.Ack.DelayMaxMs),
		},
		&cli.StringFlag{
			Name:  "out",
			Usage: "output path for the reconstructed stream",
			Value: cfg.Output,
		},
		&cli.StringFlag{
			Name:  "log-file",
			Usage: "also append structured logs to this rotated file",
		},
	}
}

func buildConfig(cmd *cli.Command) (swp.Config, error) {
	cfg := swp.DefaultConfig()
	if path := cmd.String("config"); path != "" {
		var err error
		if cfg, err = swp.LoadConfig(path); err != nil {
			return cfg, err
		}
	}
	if cmd.IsSet("rx-host") {
		cfg.DataHost = cmd.String("rx-host")
	}
	if cmd.IsSet("rx-port") {
		cfg.DataPort = int(cmd.Int("rx-port"))
	}
	if cmd.IsSet("tx-ack-host") {
		cfg.AckHost = cmd.String("tx-ack-host")
	}
	if cmd.IsSet("tx-ack-port") {
		cfg.AckPort = int(cmd.Int("tx-ack-port"))
	}
	if cmd.IsSet("seed") {
		cfg.Seed = int64(cmd.Int("seed"))
	}
	if cmd.IsSet("timeout-ms") {
		cfg.TimeoutMs = int(cmd.Int("timeout-ms"))
	}
	if cmd.IsSet("retries") {
		cfg.MaxRetries = int(cmd.Int("retries"))
	}
	if cmd.IsSet("loss-data") {
		cfg.Data.LossProbability = cmd.Float("loss-data")
	}
	if cmd.IsSet("data-delay-min") {
		cfg.Data.DelayMinMs = int(cmd.Int("data-delay-min"))
	}
	if cmd.IsSet("data-delay-max") {
		cfg.Data.DelayMaxMs = int(cmd.Int("data-delay-max"))
	}
	if cmd.IsSet("loss-ack") {
		cfg.Ack.LossProbability = cmd.Float("loss-ack")
	}
	if cmd.IsSet("ack-delay-min") {
		cfg.Ack.DelayMinMs = int(cmd.Int("ack-delay-min"))
	}
	if cmd.IsSet("ack-delay-max") {
		cfg.Ack.DelayMaxMs = int(cmd.Int("ack-delay-max"))
	}
	if cmd.IsSet("out") {
		cfg.Output = cmd.String("out")
	}
	return cfg, cfg.Validate()
}

func buildLogger(cmd *cli.Command, endpoint string) zerolog.Logger {
	if path := cmd.String("log-file"); path != "" {
		return swp.NewMultiLogger(endpoint, path)
	}
	return swp.NewConsoleLogger(endpoint)
}

func sendCommand() *cli.Command {
	return &cli.Command{
		Name:      "send",
		Usage:     "transmit a file over the lossy channel",
		ArgsUsage: "INPUT_FILE",
		Flags:     defaultFlags(),
		Action:    sendAction,
	}
}

func sendAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	input := cmd.Args().First()
	if input == "" {
		input = cfg.Input
	}
	if input == "" {
		return fmt.Errorf("missing input file argument")
	}
	file, err := os.Open(input)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer file.Close()
	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("stat input: %w", err)
	}

	connector := swp.NewUDPConnector(cfg.DataHost, cfg.DataPort, cfg.AckHost, cfg.AckPort)
	if err := connector.Open(); err != nil {
		return fmt.Errorf("transport setup: %w", err)
	}
	defer connector.Close()

	logger := buildLogger(cmd, "tx")
	logger.Info().Str("input", input).Int64("size", info.Size()).
		Str("data", fmt.Sprintf("%s:%d", cfg.DataHost, cfg.DataPort)).
		Str("ack", fmt.Sprintf("%s:%d", cfg.AckHost, cfg.AckPort)).
		Msg("sending")

	policy := swp.NewChannelPolicy(cfg.Data.LossProbability, cfg.Data.DelayMin(), cfg.Data.DelayMax(),
		swp.NewSeededGenerator(cfg.Seed))
	snd := swp.NewSender(connector, policy, cfg.Timeout(), cfg.MaxRetries, logger)

	summary, err := snd.Transfer(swp.NewChunker(file, uint32(info.Size())))
	logger.Info().Int("chunks_attempted", summary.ChunksAttempted).
		Int("chunks_delivered", summary.ChunksDelivered).Msg("done")
	return err
}

func receiveCommand() *cli.Command {
	return &cli.Command{
		Name:   "receive",
		Usage:  "listen for a file and reconstruct it",
		Flags:  defaultFlags(),
		Action: receiveAction,
	}
}

func receiveAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	out, err := os.Create(cfg.Output)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}

	connector := swp.NewUDPConnector(cfg.AckHost, cfg.AckPort, cfg.DataHost, cfg.DataPort)
	if err := connector.Open(); err != nil {
		out.Close()
		return fmt.Errorf("transport setup: %w", err)
	}
	defer connector.Close()

	logger := buildLogger(cmd, "rx")
	logger.Info().Str("output", cfg.Output).
		Str("data", fmt.Sprintf("%s:%d", cfg.DataHost, cfg.DataPort)).
		Msg("listening")

	policy := swp.NewChannelPolicy(cfg.Ack.LossProbability, cfg.Ack.DelayMin(), cfg.Ack.DelayMax(),
		swp.NewSeededGenerator(cfg.Seed))
	rcv := swp.NewReceiver(connector, policy, out, logger)

	summary, err := rcv.Receive()
	logger.Info().Uint32("bytes_written", summary.BytesWritten).
		Uint32("total_length", summary.TotalLength).Msg("done")
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	return err
}

func generateCommand() *cli.Command {
	return &cli.Command{
		Name:      "generate",
		Usage:     "write a seeded random test file",
		ArgsUsage: "OUTPUT_FILE",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "size", Usage: "file size in bytes", Value: 4096},
			&cli.IntFlag{Name: "seed", Usage: "random seed", Value: 12},
		},
		Action: generateAction,
	}
}

func generateAction(ctx context.Context, cmd *cli.Command) error {
	path := cmd.Args().First()
	if path == "" {
		return fmt.Errorf("missing output file argument")
	}
	return swp.GenerateRandomFile(path, int64(cmd.Int("size")), int64(cmd.Int("seed")))
}

func compareCommand() *cli.Command {
	return &cli.Command{
		Name:      "compare",
		Usage:     "compare two files byte for byte",
		ArgsUsage: "FILE_A FILE_B",
		Action:    compareAction,
	}
}

func compareAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 2 {
		return fmt.Errorf("expected exactly two file arguments")
	}
	fileA, err := os.Open(cmd.Args().Get(0))
	if err != nil {
		return err
	}
	defer fileA.Close()
	fileB, err := os.Open(cmd.Args().Get(1))
	if err != nil {
		return err
	}
	defer fileB.Close()

	offset, differs, err := swp.FirstDifference(fileA, fileB)
	if err != nil {
		return err
	}
	if differs {
		return fmt.Errorf("files differ at byte offset %d", offset)
	}
	fmt.Println("files are identical")
	return nil
}
