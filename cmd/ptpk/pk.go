package main

import (
	"fmt"
	"log"
	"math"

	"github.com/montanaflynn/stats"

	ccl "github.com/chrgeorgiou/CCL"
	"github.com/chrgeorgiou/CCL/bstore"
	"github.com/chrgeorgiou/CCL/nlpt"
)

type cmdPk struct {
	store      string
	plinFile   string
	growthFile string
	outFile    string
	pnlFile    string

	tracer1, tracer2 string
	b1, b2, bs       float64
	c1, c2, cd       float64

	subLowK  bool
	linear   bool
	returnBB bool
	aArr     []float64
}

// run evaluates the PT power spectrum for the configured tracer pair,
// drawing correlator bundles from a store populated by the import
// command, and writes one "a k P" row per grid sample.
func (c *cmdPk) run() {
	cosmo := c.loadCosmology()

	store, err := bstore.Open(c.store)
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close()

	t1 := c.makeTracer(c.tracer1)
	t2kind := c.tracer2
	if t2kind == "" {
		t2kind = c.tracer1
	}
	t2 := c.makeTracer(t2kind)

	opts := gridOptions()
	opts.WithNC = t1.Kind() == nlpt.NumberCounts || t2.Kind() == nlpt.NumberCounts
	opts.WithIA = t1.Kind() == nlpt.IntrinsicAlignment || t2.Kind() == nlpt.IntrinsicAlignment

	ptc, err := nlpt.NewCalculator(opts, bstore.Factory(store, nil))
	if err != nil {
		log.Fatal(err)
	}

	params := nlpt.DefaultParams()
	params.Tracer2 = t2
	params.SubLowK = c.subLowK
	params.UseNonlin = !c.linear
	params.ReturnIABB = c.returnBB
	if len(c.aArr) > 0 {
		params.AArr = c.aArr
	}

	pk, err := nlpt.PTPk2D(cosmo, t1, ptc, params)
	if err != nil {
		log.Fatal(err)
	}

	c.write(pk)
	if *debug {
		c.summarize(pk)
	}
}

func (c *cmdPk) loadCosmology() ccl.Cosmology {
	plinCols := readTable(c.plinFile, 2)
	growthCols := readTable(c.growthFile, 2)

	var pnl []float64
	if c.pnlFile != "" {
		pnlCols := readTable(c.pnlFile, 2)
		if len(pnlCols[0]) != len(plinCols[0]) {
			log.Fatalf("%s: nonlinear table has %d rows, linear one has %d", c.pnlFile, len(pnlCols[0]), len(plinCols[0]))
		}
		pnl = pnlCols[1]
	}

	cosmo, err := ccl.NewTabulatedCosmology(plinCols[0], plinCols[1], pnl, growthCols[0], growthCols[1])
	if err != nil {
		log.Fatal(err)
	}
	return cosmo
}

func (c *cmdPk) makeTracer(kind string) nlpt.Tracer {
	switch kind {
	case "nc":
		return nlpt.NewNumberCountsTracer(
			nlpt.ConstantBias(c.b1), nlpt.ConstantBias(c.b2), nlpt.ConstantBias(c.bs))
	case "ia":
		return nlpt.NewIntrinsicAlignmentTracer(
			nlpt.ConstantBias(c.c1), nlpt.ConstantBias(c.c2), nlpt.ConstantBias(c.cd))
	case "m":
		return nlpt.NewMatterTracer()
	default:
		log.Fatalf("unknown tracer type %q (want nc, ia or m)", kind)
		return nil
	}
}

func (c *cmdPk) write(pk *ccl.Pk2D) {
	w := createFile(c.outFile)
	defer w.Close()

	w.WriteString("# a\tk\tP\n")
	for _, a := range pk.A() {
		for _, lk := range pk.LnK() {
			k := math.Exp(lk)
			w.WriteString(fmt.Sprintf("%g\t%g\t%g\n", a, k, pk.Eval(k, a)))
		}
	}
}

// summarize logs summary statistics of the spectrum at the latest
// sampled epoch.
func (c *cmdPk) summarize(pk *ccl.Pk2D) {
	as := pk.A()
	a := as[len(as)-1]
	values := make([]float64, 0, len(pk.LnK()))
	for _, lk := range pk.LnK() {
		values = append(values, pk.Eval(math.Exp(lk), a))
	}

	min, _ := stats.Min(values)
	max, _ := stats.Max(values)
	mean, _ := stats.Mean(values)
	median, _ := stats.Median(values)
	log.Printf("P(k, a=%g): min %g, max %g, mean %g, median %g\n", a, min, max, mean, median)
}
