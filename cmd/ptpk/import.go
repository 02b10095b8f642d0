package main

import (
	"log"

	ccl "github.com/chrgeorgiou/CCL"
	"github.com/chrgeorgiou/CCL/bstore"
	"github.com/chrgeorgiou/CCL/nlpt"
)

type cmdImport struct {
	store    string
	plinFile string

	ddBiasFile string
	iaTAFile   string
	iaTTFile   string
	iaMixFile  string
}

// run loads externally computed correlator tables (for example a
// FAST-PT export) into a bundle store, keyed by the linear spectrum
// they were computed from. The tables must be sampled on the same
// wavenumber grid as the pk command will use.
func (c *cmdImport) run() {
	ks, key := spectrumKey(c.plinFile)
	nk := len(ks)

	store, err := bstore.Open(c.store)
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close()

	imported := 0
	if c.ddBiasFile != "" {
		cols := readTable(c.ddBiasFile, nlpt.NumDDBiasTerms)
		checkRows(c.ddBiasFile, cols, nk)
		if err := store.PutTerm(bstore.TermDDBias, key, cols); err != nil {
			log.Fatal(err)
		}
		imported++
	}
	if c.iaTAFile != "" {
		cols := readTable(c.iaTAFile, 4)
		checkRows(c.iaTAFile, cols, nk)
		ta := nlpt.IATidalAlignment{A00E: cols[0], C00E: cols[1], A0E0E: cols[2], A0B0B: cols[3]}
		if err := store.PutTerm(bstore.TermIATA, key, &ta); err != nil {
			log.Fatal(err)
		}
		imported++
	}
	if c.iaTTFile != "" {
		cols := readTable(c.iaTTFile, 2)
		checkRows(c.iaTTFile, cols, nk)
		tt := nlpt.IATidalTorquing{AE2E2: cols[0], AB2B2: cols[1]}
		if err := store.PutTerm(bstore.TermIATT, key, &tt); err != nil {
			log.Fatal(err)
		}
		imported++
	}
	if c.iaMixFile != "" {
		cols := readTable(c.iaMixFile, 4)
		checkRows(c.iaMixFile, cols, nk)
		mix := nlpt.IAMixedTerms{A0E2: cols[0], B0E2: cols[1], D0EE2: cols[2], D0BB2: cols[3]}
		if err := store.PutTerm(bstore.TermIAMix, key, &mix); err != nil {
			log.Fatal(err)
		}
		imported++
	}

	if imported == 0 {
		log.Fatal("no correlator tables given; nothing to import")
	}
	log.Printf("imported %d term families into %s\n", imported, c.store)
}

// spectrumKey canonicalizes the tabulated linear spectrum the same way
// the pk command does: through the cosmology interpolator evaluated on
// the calculator grid at a=1. Both commands therefore derive identical
// store keys from the same table.
func spectrumKey(plinFile string) (ks []float64, key []byte) {
	cols := readTable(plinFile, 2)

	ks, err := gridOptions().GridKs()
	if err != nil {
		log.Fatal(err)
	}
	if len(cols[0]) != len(ks) {
		log.Fatalf("%s: table has %d rows, grid wants %d", plinFile, len(cols[0]), len(ks))
	}

	// Dummy growth table; only D(1)=1 matters for the a=1 evaluation.
	cosmo, err := ccl.NewTabulatedCosmology(cols[0], cols[1], nil, []float64{0.5, 1}, []float64{0.5, 1})
	if err != nil {
		log.Fatal(err)
	}
	plin0, err := cosmo.LinearPower(ks, 1.)
	if err != nil {
		log.Fatal(err)
	}
	return ks, bstore.SpectrumKey(plin0)
}

func checkRows(filename string, cols [][]float64, nk int) {
	if len(cols[0]) != nk {
		log.Fatalf("%s: table has %d rows, grid wants %d", filename, len(cols[0]), nk)
	}
}
