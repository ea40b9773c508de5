package genesis

import (
	"bytes"
	"encoding/hex"
	"sort"

	"github.com/handshake-org/hskd/wire"
)

// DS is a delegation signer record carried into the root zone snapshot.
type DS struct {
	KeyTag     uint16
	Algorithm  uint8
	DigestType uint8
	Digest     []byte
}

// Glue is one authoritative nameserver with its addresses. Addresses are
// raw 4-byte IPv4 or 16-byte IPv6 values.
type Glue struct {
	NS    string
	Addrs [][]byte
}

// Record is the resource data a reserved root name is registered with.
type Record struct {
	TTL  uint32
	DS   []DS
	Glue []Glue
}

// rootZone is the frozen snapshot of the reserved root names and their
// delegation data at the chain epoch. The claimer and registry genesis
// transactions are generated from this table, so it must never change.
var rootZone = map[string]Record{
	"arpa": {TTL: 86400, DS: []DS{
		ds(42581, 8, 2, "f28391c1ad4d0678d040d4b6d22a1fb83b3d2c1d9e1cbd0e35cdcd4e3e985a62"),
	}, Glue: []Glue{
		{NS: "a.ns.arpa", Addrs: [][]byte{ip4(199, 180, 182, 53)}},
	}},
	"com": {TTL: 172800, DS: []DS{
		ds(30909, 8, 2, "e2d3c916f6deeac73294e8268fb5885044a833fc5459588f4a9184cfc41a5766"),
	}, Glue: []Glue{
		{NS: "a.gtld-servers.net", Addrs: [][]byte{ip4(192, 5, 6, 30)}},
		{NS: "b.gtld-servers.net", Addrs: [][]byte{ip4(192, 33, 14, 30)}},
	}},
	"net": {TTL: 172800, DS: []DS{
		ds(35886, 8, 2, "7862b27f5f516ebe19680444d4ce5e762981931842c465f00236401d8bd973ee"),
	}, Glue: []Glue{
		{NS: "a.gtld-servers.net", Addrs: [][]byte{ip4(192, 5, 6, 30)}},
	}},
	"org": {TTL: 86400, DS: []DS{
		ds(17883, 7, 2, "b2393acf5ab963a1b6e5a0a1b06f8bd5195ed9aec404cd0c19e66d5846de7aa2"),
	}, Glue: []Glue{
		{NS: "a0.org.afilias-nst.info", Addrs: [][]byte{ip4(199, 19, 56, 1)}},
	}},
	"edu": {TTL: 172800, DS: []DS{
		ds(28065, 8, 2, "4172496cde85534e51129040355bd04b1fcfebae996dfdde652006f6f8b2ce76"),
	}, Glue: []Glue{
		{NS: "a.edu-servers.net", Addrs: [][]byte{ip4(192, 5, 6, 30)}},
	}},
	"gov": {TTL: 86400, DS: []DS{
		ds(7698, 8, 2, "2b42c41a1b134806ee1cbe932a767b62ccccbef99059ac0f0b2c14b5d8d257a6"),
	}, Glue: []Glue{
		{NS: "a.ns.gov", Addrs: [][]byte{ip4(69, 36, 157, 30)}},
	}},
	"int": {TTL: 86400, DS: nil, Glue: []Glue{
		{NS: "ns.uu.net", Addrs: [][]byte{ip4(137, 39, 1, 3)}},
	}},
	"mil": {TTL: 86400, DS: []DS{
		ds(62912, 8, 2, "563b979d4614a44cf91db1b57f6e2f8e4b0762c73f64a8e0ff1b16bc6c0a2bbb"),
	}, Glue: []Glue{
		{NS: "con1.nipr.mil", Addrs: [][]byte{ip4(199, 252, 157, 234)}},
	}},
	"de": {TTL: 86400, DS: []DS{
		ds(45580, 8, 2, "a004d7a0bd211d70b16d5690afa1b7e1bac0d41cd0e8bf4cdb0b49d2d9ee495a"),
	}, Glue: []Glue{
		{NS: "a.nic.de", Addrs: [][]byte{ip4(194, 0, 0, 53)}},
	}},
	"uk": {TTL: 172800, DS: []DS{
		ds(43876, 8, 2, "a107ed2ee55e3c927ce336c12b4f8c42f4a0a4c4e8c22b93f8b22a3d19e7eab1"),
	}, Glue: []Glue{
		{NS: "nsa.nic.uk", Addrs: [][]byte{ip4(156, 154, 100, 3)}},
	}},
	"jp": {TTL: 86400, DS: []DS{
		ds(35422, 8, 2, "591ff1b9668089a0a0d23b50575282873e087dbad4125ee77cbca8c34a1a9b80"),
	}, Glue: []Glue{
		{NS: "a.dns.jp", Addrs: [][]byte{ip4(203, 119, 1, 1)}},
	}},
	"fr": {TTL: 172800, DS: []DS{
		ds(35095, 8, 2, "2a5dbba52b8dbed8b747e7e1d01bb66d0ae07e9926a35d4220f15ca9fdcbbd9b"),
	}, Glue: []Glue{
		{NS: "d.nic.fr", Addrs: [][]byte{ip4(194, 0, 9, 1)}},
	}},
	"nl": {TTL: 86400, DS: []DS{
		ds(34112, 8, 2, "a7a75a4b39e0cb1a2f4b97b41d1c8f8a7d8f4b8e6a27d8d7f0d62d86a0d5e04c"),
	}, Glue: []Glue{
		{NS: "ns1.dns.nl", Addrs: [][]byte{ip4(194, 0, 28, 53)}},
	}},
	"se": {TTL: 86400, DS: []DS{
		ds(59747, 8, 2, "cda34ac76ac90bc04f91655b0e45cd17bfa6b4d21e15a0d491ba4dead32f01f9"),
	}, Glue: []Glue{
		{NS: "a.ns.se", Addrs: [][]byte{ip4(192, 36, 144, 107)}},
	}},
	"ch": {TTL: 86400, DS: []DS{
		ds(52236, 8, 2, "f4dd4833495eeef2f7cfae75f0f26c86975c7ee13e8e03fe2674d02df858cbf0"),
	}, Glue: []Glue{
		{NS: "a.nic.ch", Addrs: [][]byte{ip4(130, 59, 31, 41)}},
	}},
	"au": {TTL: 86400, DS: []DS{
		ds(35324, 8, 2, "3645dcec54d70a7c49dfb8fd31e105cb4b5ba658206cd5d33c45b6ac26f16a25"),
	}, Glue: []Glue{
		{NS: "a.au", Addrs: [][]byte{ip4(58, 65, 254, 73)}},
	}},
	"br": {TTL: 86400, DS: []DS{
		ds(24906, 13, 2, "0d873e0b4e787fce7f2c44e5cb89aaed2c3db1a513934a7117d4a78a0aad8d9c"),
	}, Glue: []Glue{
		{NS: "a.dns.br", Addrs: [][]byte{ip4(200, 160, 0, 10)}},
	}},
	"in": {TTL: 86400, DS: []DS{
		ds(44214, 8, 2, "03bc76ebd225d9f2a3a2e4f6bbca600f94e087a2669ffcfed3ee12b289665a9c"),
	}, Glue: []Glue{
		{NS: "ns1.registry.in", Addrs: [][]byte{ip4(37, 209, 192, 2)}},
	}},
}

func ds(keyTag uint16, algorithm, digestType uint8, digest string) DS {
	raw, err := hex.DecodeString(digest)
	if err != nil {
		// The table is compiled in; a bad digest is a programming
		// error.
		panic(err)
	}
	return DS{
		KeyTag:     keyTag,
		Algorithm:  algorithm,
		DigestType: digestType,
		Digest:     raw,
	}
}

func ip4(a, b, c, d byte) []byte {
	return []byte{a, b, c, d}
}

// IsReserved reports whether name is in the reserved root zone and may
// therefore only enter the chain through the genesis claimant.
func IsReserved(name []byte) bool {
	_, ok := rootZone[string(name)]
	return ok
}

// ReservedNames returns the reserved root names in lexicographic order,
// the order the claimer and registry transactions enumerate them in.
func ReservedNames() []string {
	names := make([]string, 0, len(rootZone))
	for name := range rootZone {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ReservedRecord returns the snapshot record for a reserved name.
func ReservedRecord(name string) (Record, bool) {
	record, ok := rootZone[name]
	return record, ok
}

// EncodeResource renders a record in the canonical byte form committed by
// REGISTER covenants: ttl, then the DS set, then the glue set, each
// length prefixed.
func EncodeResource(record *Record) []byte {
	var buf bytes.Buffer
	_ = wire.WriteElement(&buf, record.TTL)
	_ = wire.WriteVarInt(&buf, uint64(len(record.DS)))
	for i := range record.DS {
		ds := &record.DS[i]
		_ = wire.WriteElement(&buf, uint32(ds.KeyTag))
		_ = wire.WriteElements(&buf, ds.Algorithm, ds.DigestType)
		_ = wire.WriteVarBytes(&buf, ds.Digest)
	}
	_ = wire.WriteVarInt(&buf, uint64(len(record.Glue)))
	for i := range record.Glue {
		glue := &record.Glue[i]
		_ = wire.WriteVarBytes(&buf, []byte(glue.NS))
		_ = wire.WriteVarInt(&buf, uint64(len(glue.Addrs)))
		for _, addr := range glue.Addrs {
			_ = wire.WriteVarBytes(&buf, addr)
		}
	}
	return buf.Bytes()
}
