package g711

import "sync"

// Tables trades 129 KiB of memory for branch-free conversion. Every entry is
// produced by the scalar functions, so results are identical.
type Tables struct {
	aLawEnc  [1 << 16]byte
	muLawEnc [1 << 16]byte
	aLawDec  [256]int16
	muLawDec [256]int16
}

var (
	tablesOnce sync.Once
	tables     *Tables
)

// LoadTables builds the lookup tables on first use and returns the shared copy.
func LoadTables() *Tables {
	tablesOnce.Do(func() {
		t := &Tables{}
		for i := range t.aLawEnc {
			s := int16(uint16(i))
			t.aLawEnc[i] = LinearToALaw(s)
			t.muLawEnc[i] = LinearToMuLaw(s)
		}
		for i := range t.aLawDec {
			t.aLawDec[i] = ALawToLinear(byte(i))
			t.muLawDec[i] = MuLawToLinear(byte(i))
		}
		tables = t
	})
	return tables
}

func (t *Tables) LinearToALaw(sample int16) byte {
	return t.aLawEnc[uint16(sample)]
}

func (t *Tables) ALawToLinear(a byte) int16 {
	return t.aLawDec[a]
}

func (t *Tables) LinearToMuLaw(sample int16) byte {
	return t.muLawEnc[uint16(sample)]
}

func (t *Tables) MuLawToLinear(u byte) int16 {
	return t.muLawDec[u]
}
