package genesis

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/handshake-org/hskd/wire"
)

// NetworkParams names the genesis parameters of one network.
type NetworkParams struct {
	Name   string
	Params Params
}

// NetworkBlock pairs a network name with its built genesis block.
type NetworkBlock struct {
	Name  string
	Block *wire.MsgBlock
}

// BuildNetworks builds a genesis block per network, preserving order.
func BuildNetworks(networks []NetworkParams) ([]NetworkBlock, error) {
	blocks := make([]NetworkBlock, 0, len(networks))
	for i := range networks {
		block, err := Build(&networks[i].Params)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, NetworkBlock{
			Name:  networks[i].Name,
			Block: block,
		})
	}
	return blocks, nil
}

// WriteGoSnippet emits a generated Go source fragment pinning each
// network's genesis hash and raw header.
func WriteGoSnippet(w io.Writer, blocks []NetworkBlock) error {
	var buf bytes.Buffer
	buf.WriteString("// Code generated by genesisgen. DO NOT EDIT.\n\n")
	buf.WriteString("package chaincfg\n\n")
	for _, network := range blocks {
		ident := exportIdent(network.Name)
		blockHash := network.Block.BlockHash()
		fmt.Fprintf(&buf, "// %sGenesisHash is the hash of the %s genesis block.\n",
			ident, network.Name)
		fmt.Fprintf(&buf, "const %sGenesisHash = %q\n\n", ident,
			blockHash.String())

		header := network.Block.Header.Bytes()
		fmt.Fprintf(&buf, "var %sGenesisHeader = []byte{", ident)
		for i, b := range header {
			if i%12 == 0 {
				buf.WriteString("\n\t")
			}
			fmt.Fprintf(&buf, "0x%02x, ", b)
		}
		buf.WriteString("\n}\n\n")
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// WriteJSON emits a JSON object mapping each network name to its
// base64-encoded raw genesis block.
func WriteJSON(w io.Writer, blocks []NetworkBlock) error {
	// Encode by hand to keep network order stable instead of the sorted
	// order encoding a map would impose.
	var buf bytes.Buffer
	buf.WriteString("{\n")
	for i, network := range blocks {
		raw, err := network.Block.Bytes()
		if err != nil {
			return err
		}
		name, err := json.Marshal(network.Name)
		if err != nil {
			return err
		}
		fmt.Fprintf(&buf, "  %s: %q", name,
			base64.StdEncoding.EncodeToString(raw))
		if i != len(blocks)-1 {
			buf.WriteString(",")
		}
		buf.WriteString("\n")
	}
	buf.WriteString("}\n")
	_, err := w.Write(buf.Bytes())
	return err
}

// WriteCHeader emits a C header carrying each network's raw genesis
// header as an escaped byte string literal.
func WriteCHeader(w io.Writer, blocks []NetworkBlock) error {
	var buf bytes.Buffer
	buf.WriteString("/* Generated by genesisgen. Do not edit. */\n\n")
	buf.WriteString("#ifndef _HSK_GENESIS_H\n")
	buf.WriteString("#define _HSK_GENESIS_H\n\n")
	for _, network := range blocks {
		header := network.Block.Header.Bytes()
		fmt.Fprintf(&buf, "static const uint8_t HSK_GENESIS_%s[] = \"\"\n",
			strings.ToUpper(network.Name))
		for i := 0; i < len(header); i += 16 {
			end := i + 16
			if end > len(header) {
				end = len(header)
			}
			buf.WriteString("  \"")
			for _, b := range header[i:end] {
				fmt.Fprintf(&buf, "\\x%02x", b)
			}
			buf.WriteString("\"\n")
		}
		buf.WriteString(";\n\n")
	}
	buf.WriteString("#endif\n")
	_, err := w.Write(buf.Bytes())
	return err
}

func exportIdent(name string) string {
	if name == "" {
		return ""
	}
	return strings.ToUpper(name[:1]) + name[1:]
}
