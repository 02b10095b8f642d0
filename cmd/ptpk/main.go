package main

import (
	"os"

	"github.com/alecthomas/kingpin"
)

var (
	app   = kingpin.New("ptpk", "A command-line application for perturbation theory power spectra.")
	debug = app.Flag("debug", "Enable debug mode.").Bool()

	log10kMin   = app.Flag("log10k-min", "decimal log of the minimum wavenumber.").Default("-4").Float64()
	log10kMax   = app.Flag("log10k-max", "decimal log of the maximum wavenumber.").Default("2").Float64()
	nkPerDecade = app.Flag("nk-per-decade", "wavenumber samples per decade.").Default("20").Int()

	importApp    = app.Command("import", "import correlator tables into a bundle store.")
	importStore  = importApp.Arg("store", "bundle store path.").Required().String()
	importPlin   = importApp.Arg("plin_file", "linear power spectrum table (k P), sampled on the grid.").Required().String()
	importDDBias = importApp.Flag("dd-bias", "density-bias decomposition table (8 columns).").String()
	importIATA   = importApp.Flag("ia-ta", "tidal alignment table (a00e c00e a0e0e a0b0b).").String()
	importIATT   = importApp.Flag("ia-tt", "tidal torquing table (ae2e2 ab2b2).").String()
	importIAMix  = importApp.Flag("ia-mix", "mixed terms table (a0e2 b0e2 d0ee2 d0bb2).").String()

	pkApp     = app.Command("pk", "compute a PT power spectrum for a tracer pair.")
	pkStore   = pkApp.Arg("store", "bundle store path.").Required().String()
	pkPlin    = pkApp.Arg("plin_file", "linear power spectrum table (k P), sampled on the grid.").Required().String()
	pkGrowth  = pkApp.Arg("growth_file", "growth factor table (a D), D(1)=1.").Required().String()
	pkOut     = pkApp.Arg("out_file", "output file.").Required().String()
	pkPnl     = pkApp.Flag("pnl", "nonlinear power spectrum table (k P) on the same wavenumbers.").String()
	pkT1      = pkApp.Flag("tracer1", "first tracer type: nc, ia or m.").Default("nc").String()
	pkT2      = pkApp.Flag("tracer2", "second tracer type; defaults to tracer1.").String()
	pkB1      = pkApp.Flag("b1", "number counts linear bias.").Default("1").Float64()
	pkB2      = pkApp.Flag("b2", "number counts second-order bias.").Default("0").Float64()
	pkBS      = pkApp.Flag("bs", "number counts tidal bias.").Default("0").Float64()
	pkC1      = pkApp.Flag("c1", "alignment linear bias.").Default("1").Float64()
	pkC2      = pkApp.Flag("c2", "alignment torquing bias.").Default("0").Float64()
	pkCD      = pkApp.Flag("cdelta", "alignment overdensity bias.").Default("0").Float64()
	pkSubLowK = pkApp.Flag("sub-lowk", "subtract the low-k white noise term.").Bool()
	pkLinear  = pkApp.Flag("linear", "use the linear spectrum as Pd1d1.").Bool()
	pkBB      = pkApp.Flag("bb", "return the alignment B-mode spectrum.").Bool()
	pkA       = pkApp.Flag("a", "scale factor sample; repeatable. Defaults to the growth table.").Float64List()
)

func main() {
	switch kingpin.MustParse(app.Parse(os.Args[1:])) {
	case importApp.FullCommand():
		importCmd := cmdImport{
			store:      *importStore,
			plinFile:   *importPlin,
			ddBiasFile: *importDDBias,
			iaTAFile:   *importIATA,
			iaTTFile:   *importIATT,
			iaMixFile:  *importIAMix,
		}
		importCmd.run()
	case pkApp.FullCommand():
		pkCmd := cmdPk{
			store:      *pkStore,
			plinFile:   *pkPlin,
			growthFile: *pkGrowth,
			outFile:    *pkOut,
			pnlFile:    *pkPnl,
			tracer1:    *pkT1,
			tracer2:    *pkT2,
			b1:         *pkB1,
			b2:         *pkB2,
			bs:         *pkBS,
			c1:         *pkC1,
			c2:         *pkC2,
			cd:         *pkCD,
			subLowK:    *pkSubLowK,
			linear:     *pkLinear,
			returnBB:   *pkBB,
			aArr:       *pkA,
		}
		pkCmd.run()
	}
}
