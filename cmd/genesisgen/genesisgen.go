// genesisgen deterministically rebuilds the genesis block of every
// network and emits the three artifacts the rest of the system consumes:
// a Go constants snippet, a JSON file with the base64-encoded raw blocks,
// and a C header with the raw headers as escaped byte literals.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jessevdk/go-flags"

	"github.com/handshake-org/hskd/chaincfg"
	"github.com/handshake-org/hskd/genesis"
	"github.com/handshake-org/hskd/wire"
)

type config struct {
	OutDir string `short:"o" long:"outdir" description:"Directory to write the genesis artifacts to" default:"."`
}

// networks lists every network whose genesis is emitted, in artifact
// order.
func networks() []genesis.NetworkParams {
	params := []*chaincfg.Params{
		&chaincfg.MainNetParams,
		&chaincfg.TestNetParams,
		&chaincfg.RegressionNetParams,
		&chaincfg.SimNetParams,
	}
	list := make([]genesis.NetworkParams, 0, len(params))
	for _, p := range params {
		list = append(list, genesis.NetworkParams{
			Name: p.Name,
			Params: genesis.Params{
				Time:     p.GenesisTime,
				Bits:     p.PowBits,
				Keys:     p.Keys,
				Solution: make(wire.Solution, p.Cuckoo.Size),
			},
		})
	}
	return list
}

func writeArtifact(outDir, name string, write func(f *os.File) error) error {
	path := filepath.Join(outDir, name)
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	err = write(f)
	closeErr := f.Close()
	if err != nil {
		return err
	}
	return closeErr
}

func realMain() error {
	cfg := &config{}
	_, err := flags.Parse(cfg)
	if err != nil {
		return err
	}

	blocks, err := genesis.BuildNetworks(networks())
	if err != nil {
		return err
	}

	err = writeArtifact(cfg.OutDir, "genesis_constants.go",
		func(f *os.File) error {
			return genesis.WriteGoSnippet(f, blocks)
		})
	if err != nil {
		return err
	}
	err = writeArtifact(cfg.OutDir, "genesis.json", func(f *os.File) error {
		return genesis.WriteJSON(f, blocks)
	})
	if err != nil {
		return err
	}
	err = writeArtifact(cfg.OutDir, "genesis.h", func(f *os.File) error {
		return genesis.WriteCHeader(f, blocks)
	})
	if err != nil {
		return err
	}

	for _, nb := range blocks {
		fmt.Printf("%-8s %s\n", nb.Name, nb.Block.BlockHash())
	}
	return nil
}

func main() {
	if err := realMain(); err != nil {
		if flagErr, ok := err.(*flags.Error); ok &&
			flagErr.Type == flags.ErrHelp {
			return
		}
		fmt.Fprintf(os.Stderr, "genesisgen: %v\n", err)
		os.Exit(1)
	}
}
