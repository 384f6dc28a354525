package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/pterm/pterm"
	"github.com/pterm/pterm/putils"

	"github.com/luca-patrignani/powledger/ledger"
)

// genesisPayload is the payload of the first block of every chain.
var genesisPayload = []byte{0x00, 0x00, 0x00, 0x00}

func main() {
	if len(os.Args) > 2 {
		fmt.Fprintf(os.Stderr, "usage: %s [config.toml]\n", os.Args[0])
		os.Exit(1)
	}
	var path string
	if len(os.Args) == 2 {
		path = os.Args[1]
	}

	cfg, err := loadConfig(path)
	if err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}

	level := pterm.LogLevelInfo
	if cfg.Verbose {
		level = pterm.LogLevelDebug
	}
	logger := slog.New(pterm.NewSlogHandler(pterm.DefaultLogger.WithLevel(level)))

	pterm.DefaultBigText.WithLetters(
		putils.LettersFromStringWithStyle("Pow", pterm.FgRed.ToStyle()),
		putils.LettersFromStringWithStyle("Ledger", pterm.FgDarkGray.ToStyle()),
	).Render()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if _, err := run(ctx, cfg, logger); err != nil {
		logger.Error("run failed", "error", err)
		stop()
		os.Exit(1)
	}
}

// run builds a chain from the genesis payload and appends cfg.Blocks random
// blocks, printing each block and the validation outcome after every append.
func run(ctx context.Context, cfg Config, logger *slog.Logger) (*ledger.Chain, error) {
	difficulty, err := cfg.difficulty()
	if err != nil {
		return nil, err
	}
	hasher, err := ledger.HasherByName(cfg.Hash)
	if err != nil {
		return nil, err
	}

	genesis, err := ledger.NewBlock(genesisPayload)
	if err != nil {
		return nil, err
	}

	spinner, _ := pterm.DefaultSpinner.Start("Mining the genesis block ...")
	chain, err := ledger.NewChain(ctx, difficulty, genesis,
		ledger.WithHasher(hasher),
		ledger.WithLogger(logger),
		ledger.WithMinerOptions(ledger.WithMaxAttempts(cfg.MaxAttempts)),
	)
	if err != nil {
		spinner.Fail(err.Error())
		return nil, err
	}
	spinner.Success(fmt.Sprintf("Genesis mined with difficulty %X", difficulty))
	first, _ := chain.Last()
	printBlock(0, first)

	payloads := newPayloadSource()
	validator := chain.Validator()
	for i := 1; i <= cfg.Blocks; i++ {
		b, err := ledger.NewBlock(payloads.next(cfg.PayloadSize))
		if err != nil {
			return chain, err
		}

		spinner, _ := pterm.DefaultSpinner.Start(fmt.Sprintf("Mining block %d/%d ...", i, cfg.Blocks))
		sealed, err := chain.Append(ctx, b)
		if err != nil {
			spinner.Fail(err.Error())
			return chain, err
		}
		spinner.Success(fmt.Sprintf("Block %d mined at nonce %d", i, sealed.Nonce()))

		printBlock(i, sealed)
		logger.Debug("block", "index", i, "block", sealed.String())
		printChainStatus(validator.IsChainValid(chain.All()), chain.Len())
	}

	return chain, nil
}
