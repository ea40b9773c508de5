package genesis

import (
	"bytes"
	"sort"
	"testing"

	"github.com/handshake-org/hskd/consensus"
	"github.com/handshake-org/hskd/util"
	"github.com/handshake-org/hskd/wire"
)

func testParams() *Params {
	params := &Params{
		Time:     1514765688,
		Bits:     0x207fffff,
		Solution: make(wire.Solution, 4),
	}
	for i := range params.Keys.Claimant {
		params.Keys.Investors[i] = 0x11
		params.Keys.Foundation[i] = 0x22
		params.Keys.Claimant[i] = 0x33
		params.Keys.Creators[i] = 0x44
		params.Keys.Airdrop[i] = 0x55
	}
	return params
}

func TestBuildDeterminism(t *testing.T) {
	first, err := Build(testParams())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	second, err := Build(testParams())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	firstRaw, err := first.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	secondRaw, err := second.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	if !bytes.Equal(firstRaw, secondRaw) {
		t.Fatal("two builds with identical parameters differ")
	}
	if first.BlockHash() != second.BlockHash() {
		t.Fatal("two builds with identical parameters hash differently")
	}
}

func TestBuildStructure(t *testing.T) {
	block, err := Build(testParams())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(block.Transactions) != 3 {
		t.Fatalf("got %d transactions, want 3", len(block.Transactions))
	}
	coinbase, claimer, registry := block.Transactions[0],
		block.Transactions[1], block.Transactions[2]

	if !coinbase.IsCoinBase() {
		t.Error("first transaction is not a coinbase")
	}
	if string(coinbase.TxIn[0].Witness[0]) != EpochFlag {
		t.Error("coinbase witness does not carry the epoch flag")
	}
	wantValues := []util.Amount{
		consensus.GenesisReward,
		consensus.MaxInvestors,
		consensus.MaxFoundation,
		consensus.MaxCreators,
		consensus.MaxAirdrop,
	}
	if len(coinbase.TxOut) != len(wantValues) {
		t.Fatalf("coinbase has %d outputs, want %d", len(coinbase.TxOut),
			len(wantValues))
	}
	var premine util.Amount
	for i, want := range wantValues {
		if coinbase.TxOut[i].Value != want {
			t.Errorf("coinbase output %d pays %d, want %d", i,
				coinbase.TxOut[i].Value, want)
		}
		premine += coinbase.TxOut[i].Value
	}
	if premine != consensus.MaxPremine+consensus.GenesisReward {
		t.Errorf("premine totals %d, want %d", premine,
			util.Amount(consensus.MaxPremine+consensus.GenesisReward))
	}

	// The claimer spends the claimant's coinbase output and claims every
	// reserved name in lexicographic order.
	if claimer.TxIn[0].PreviousOutPoint.Hash != coinbase.TxHash() ||
		claimer.TxIn[0].PreviousOutPoint.Index != 0 {
		t.Error("claimer does not spend coinbase output 0")
	}
	if claimer.TxOut[0].Value != consensus.GenesisReward {
		t.Errorf("claimer redistributes %d, want %d",
			claimer.TxOut[0].Value, util.Amount(consensus.GenesisReward))
	}
	if !bytes.Equal(claimer.TxOut[0].Address.Hash, GenesisKeyHash[:]) {
		t.Error("claimer output 0 does not pay the genesis key")
	}
	names := ReservedNames()
	if !sort.StringsAreSorted(names) {
		t.Fatal("ReservedNames is not sorted")
	}
	if len(claimer.TxOut) != len(names)+1 {
		t.Fatalf("claimer has %d outputs, want %d", len(claimer.TxOut),
			len(names)+1)
	}
	for i, name := range names {
		out := claimer.TxOut[i+1]
		if out.Covenant.Type != wire.CovenantClaim {
			t.Fatalf("claimer output %d has covenant %v", i+1,
				out.Covenant.Type)
		}
		if string(out.Covenant.Name()) != name {
			t.Errorf("claimer output %d claims %q, want %q", i+1,
				out.Covenant.Name(), name)
		}
	}

	// The registry spends each claim output in order and registers the
	// snapshot resource.
	if len(registry.TxIn) != len(names) || len(registry.TxOut) != len(names) {
		t.Fatalf("registry has %d inputs and %d outputs, want %d each",
			len(registry.TxIn), len(registry.TxOut), len(names))
	}
	for i, name := range names {
		in := registry.TxIn[i]
		if in.PreviousOutPoint.Hash != claimer.TxHash() ||
			in.PreviousOutPoint.Index != uint32(i+1) {
			t.Errorf("registry input %d does not spend claim output %d",
				i, i+1)
		}
		out := registry.TxOut[i]
		if out.Covenant.Type != wire.CovenantRegister {
			t.Fatalf("registry output %d has covenant %v", i,
				out.Covenant.Type)
		}
		record, _ := ReservedRecord(name)
		if !bytes.Equal(out.Covenant.Items[1], EncodeResource(&record)) {
			t.Errorf("registry output %d resource mismatch for %q", i,
				name)
		}
	}
}

func TestResourceBudget(t *testing.T) {
	for _, name := range ReservedNames() {
		record, _ := ReservedRecord(name)
		resource := EncodeResource(&record)
		if len(resource) > consensus.MaxCovenantItemSize {
			t.Errorf("resource for %q is %d bytes, exceeds covenant "+
				"item budget", name, len(resource))
		}
	}
}

func TestIsReserved(t *testing.T) {
	if !IsReserved([]byte("com")) {
		t.Error("com should be reserved")
	}
	if IsReserved([]byte("notarealroot")) {
		t.Error("notarealroot should not be reserved")
	}
}

func TestArtifactsStable(t *testing.T) {
	networks := []NetworkParams{
		{Name: "main", Params: *testParams()},
		{Name: "regtest", Params: *testParams()},
	}
	blocks, err := BuildNetworks(networks)
	if err != nil {
		t.Fatalf("BuildNetworks: %v", err)
	}

	emit := func() (string, string, string) {
		var goSnippet, jsonOut, cHeader bytes.Buffer
		if err := WriteGoSnippet(&goSnippet, blocks); err != nil {
			t.Fatalf("WriteGoSnippet: %v", err)
		}
		if err := WriteJSON(&jsonOut, blocks); err != nil {
			t.Fatalf("WriteJSON: %v", err)
		}
		if err := WriteCHeader(&cHeader, blocks); err != nil {
			t.Fatalf("WriteCHeader: %v", err)
		}
		return goSnippet.String(), jsonOut.String(), cHeader.String()
	}

	go1, json1, c1 := emit()
	go2, json2, c2 := emit()
	if go1 != go2 || json1 != json2 || c1 != c2 {
		t.Fatal("artifact emission is not byte-stable")
	}
	if !bytes.Contains([]byte(json1), []byte(`"main"`)) ||
		!bytes.Contains([]byte(json1), []byte(`"regtest"`)) {
		t.Error("JSON artifact is missing network keys")
	}
	if !bytes.Contains([]byte(c1), []byte("HSK_GENESIS_MAIN")) {
		t.Error("C header artifact is missing the main literal")
	}
}
