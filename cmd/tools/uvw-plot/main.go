// Command uvw-plot renders the u,v coverage of an observation: the
// track every baseline traces in the u,v plane as the Earth rotates.
// It writes a static PNG and an interactive HTML scatter of the same
// points, which is the quickest sanity check that an antenna table and
// phase centre are consistent.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/arraydata/visibility.report/internal/astro"
	"github.com/arraydata/visibility.report/internal/pos"
	"github.com/arraydata/visibility.report/internal/vis/adapters"
)

func main() {
	var (
		obsPath     string
		antennaPath string
		pngPath     string
		htmlPath    string
	)
	flag.StringVar(&obsPath, "obs", "", "path to observation metadata JSON")
	flag.StringVar(&antennaPath, "antennas", "", "path to antenna table CSV")
	flag.StringVar(&pngPath, "png", "uvw.png", "output PNG path")
	flag.StringVar(&htmlPath, "html", "uvw.html", "output HTML path")
	flag.Parse()

	if obsPath == "" || antennaPath == "" {
		log.Fatalf("-obs and -antennas must be provided")
	}

	obs, err := adapters.LoadObsContext(obsPath, antennaPath)
	if err != nil {
		log.Fatalf("load observation: %v", err)
	}

	us, vs, err := coverage(obs)
	if err != nil {
		log.Fatalf("compute uvw coverage: %v", err)
	}

	if err := writePNG(pngPath, obs.ObsID, us, vs); err != nil {
		log.Fatalf("write png: %v", err)
	}
	if err := writeHTML(htmlPath, obs.ObsID, us, vs); err != nil {
		log.Fatalf("write html: %v", err)
	}
	fmt.Printf("wrote %d uv points to %s and %s\n", len(us), pngPath, htmlPath)
}

// coverage computes u,v for every (epoch, baseline), with each point
// mirrored through the origin since V(-u,-v) is the conjugate sample.
func coverage(obs *adapters.ObsContext) (us, vs []float64, err error) {
	xyzs := obs.Layout.XYZs()
	baselines := pos.CrossBaselines(obs.Layout.Len())

	for _, e := range obs.Epochs {
		var info *astro.PrecessionInfo
		info, err = astro.PrecessTime(e, obs.PhaseCentre, obs.Layout.Location)
		if err != nil {
			return nil, nil, err
		}
		pXYZ := info.PrecessXYZs(xyzs)
		for _, bl := range baselines {
			uvw := pos.UVWFromXYZ(pXYZ[bl.A].Sub(pXYZ[bl.B]), info.HADecJ2000)
			us = append(us, uvw.U, -uvw.U)
			vs = append(vs, uvw.V, -uvw.V)
		}
	}
	return us, vs, nil
}

func writePNG(path, obsID string, us, vs []float64) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("u,v coverage (obs %s)", obsID)
	p.X.Label.Text = "u (m)"
	p.Y.Label.Text = "v (m)"

	pts := make(plotter.XYs, len(us))
	for i := range us {
		pts[i].X = us[i]
		pts[i].Y = vs[i]
	}
	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return err
	}
	scatter.GlyphStyle.Radius = vg.Points(1)
	p.Add(scatter)
	return p.Save(6*vg.Inch, 6*vg.Inch, path)
}

func writeHTML(path, obsID string, us, vs []float64) error {
	data := make([]opts.ScatterData, len(us))
	for i := range us {
		data[i] = opts.ScatterData{Value: []interface{}{us[i], vs[i]}}
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "u,v coverage", Width: "900px", Height: "900px"}),
		charts.WithTitleOpts(opts.Title{Title: "u,v coverage", Subtitle: fmt.Sprintf("obs=%s points=%d", obsID, len(data))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "u (m)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "v (m)", NameLocation: "middle", NameGap: 30}),
	)
	scatter.AddSeries("uv", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 3}))

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return scatter.Render(f)
}
