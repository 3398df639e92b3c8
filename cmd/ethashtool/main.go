// Command ethashtool is a small front-end over the vecash engine: compute a
// block's seed hash, run a light or full hash, or materialize a DAG ahead of
// time.
package main

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/vecash-project/vecash"
)

var (
	blockFlag = &cli.Uint64Flag{
		Name:  "block",
		Usage: "block number",
	}
	headerFlag = &cli.StringFlag{
		Name:  "header",
		Usage: "32-byte header hash, hex encoded",
	}
	nonceFlag = &cli.Uint64Flag{
		Name:  "nonce",
		Usage: "64-bit nonce",
	}
	fullFlag = &cli.BoolFlag{
		Name:  "full",
		Usage: "materialize and use the full dataset instead of the verification cache",
	}
	cacheDirFlag = &cli.StringFlag{
		Name:  "cachedir",
		Usage: "directory to persist verification caches in",
	}
	datasetDirFlag = &cli.StringFlag{
		Name:  "datasetdir",
		Usage: "directory to persist materialized datasets in",
	}
)

var seedCommand = &cli.Command{
	Name:      "seed",
	Usage:     "print the seed hash for a block's epoch",
	ArgsUsage: " ",
	Flags:     []cli.Flag{blockFlag},
	Action:    seedAction,
}

var hashCommand = &cli.Command{
	Name:      "hash",
	Usage:     "compute the mix digest and result for a header hash and nonce",
	ArgsUsage: " ",
	Flags:     []cli.Flag{blockFlag, headerFlag, nonceFlag, fullFlag, cacheDirFlag, datasetDirFlag},
	Action:    hashAction,
}

var generateCommand = &cli.Command{
	Name:      "generate",
	Usage:     "materialize the DAG for a block's epoch ahead of time",
	ArgsUsage: " ",
	Flags:     []cli.Flag{blockFlag, datasetDirFlag, cacheDirFlag},
	Action:    generateAction,
}

func main() {
	app := cli.NewApp()
	app.Name = "ethashtool"
	app.Usage = "inspect and exercise the vecash proof-of-work engine"
	app.Commands = []*cli.Command{seedCommand, hashCommand, generateCommand}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func seedAction(ctx *cli.Context) error {
	block := ctx.Uint64(blockFlag.Name)
	seed := vecash.GetSeedHash(block)
	fmt.Println(hex.EncodeToString(seed.Bytes()))
	return nil
}

func hashAction(ctx *cli.Context) error {
	block := ctx.Uint64(blockFlag.Name)
	header, err := parseHash(ctx.String(headerFlag.Name))
	if err != nil {
		return err
	}
	nonce := ctx.Uint64(nonceFlag.Name)

	engine := vecash.New(vecash.Config{
		CacheDir:   ctx.String(cacheDirFlag.Name),
		DatasetDir: ctx.String(datasetDirFlag.Name),
	})
	defer engine.Close()

	if ctx.Bool(fullFlag.Name) {
		if err := engine.Dataset(block, nil); err != nil {
			return fmt.Errorf("materializing dataset: %w", err)
		}
	}

	rv, err := engine.Compute(block, header, nonce)
	if err != nil {
		return err
	}
	fmt.Printf("mixHash: %s\n", hex.EncodeToString(rv.MixHash.Bytes()))
	fmt.Printf("result:  %s\n", hex.EncodeToString(rv.Result.Bytes()))
	return nil
}

func generateAction(ctx *cli.Context) error {
	block := ctx.Uint64(blockFlag.Name)

	engine := vecash.New(vecash.Config{
		CacheDir:   ctx.String(cacheDirFlag.Name),
		DatasetDir: ctx.String(datasetDirFlag.Name),
	})
	defer engine.Close()

	return engine.Dataset(block, func(percent int) bool {
		fmt.Fprintf(os.Stderr, "\rgenerating... %3d%%", percent)
		return true
	})
}

func parseHash(s string) (vecash.H256, error) {
	var h vecash.H256
	b, err := hex.DecodeString(s)
	if err != nil {
		return h, fmt.Errorf("invalid hash %q: %w", s, err)
	}
	if len(b) != len(h) {
		return h, fmt.Errorf("invalid hash %q: want %d bytes, got %d", s, len(h), len(b))
	}
	copy(h[:], b)
	return h, nil
}
