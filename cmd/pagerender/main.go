// seehuhn.de/go/pagerender - a tiled page renderer
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Command pagerender renders the built-in test pages to PNG files.
//
// Optionally, the test pages are also written to a PDF file, which can be
// rendered by other programs for comparison, and a contact sheet with
// thumbnails of all pages is created.
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"maps"
	"os"
	"os/signal"
	"path/filepath"
	"regexp"
	"slices"

	"github.com/disintegration/imaging"
	"golang.org/x/term"

	"seehuhn.de/go/pagerender"
	"seehuhn.de/go/pagerender/gpu"
	"seehuhn.de/go/pagerender/schedule"
	"seehuhn.de/go/pagerender/testcases"
)

var (
	outDir      = flag.String("o", "out", "output directory")
	pdfFile     = flag.String("pdf", "", "also write the test pages to this PDF file")
	sheet       = flag.Bool("sheet", false, "write a contact sheet of all pages")
	zoom        = flag.Float64("zoom", 1, "zoom factor")
	supersample = flag.Int("ss", 1, "supersampling factor, 1 for exact coverage")
	tileSize    = flag.Int("tile", 16, "tile size in pixels")
	workers     = flag.Int("j", 0, "number of tiles rendered in parallel (0 = all CPUs)")
	filter      = flag.String("run", "", "only render test pages matching this regular expression")
	verbose     = flag.Bool("v", false, "log pipeline details")
)

const thumbSize = 96

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags]\n\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := run(ctx, logger)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "pagerender:", err)
		os.Exit(1)
	}
}

type namedCase struct {
	name string
	tc   testcases.Case
}

func run(ctx context.Context, logger *slog.Logger) error {
	cases, err := selectCases(*filter)
	if err != nil {
		return err
	}
	if len(cases) == 0 {
		return fmt.Errorf("no test pages match %q", *filter)
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return err
	}

	var opts []pagerender.Option
	opts = append(opts,
		pagerender.WithSupersample(*supersample),
		pagerender.WithTileSize(*tileSize),
		pagerender.WithLogger(logger),
	)
	if *workers > 0 {
		opts = append(opts, pagerender.WithWorkers(*workers))
	}
	dev := gpu.NewCompute(&gpu.ComputeOptions{Workers: *workers, Logger: logger})
	defer dev.Close()
	opts = append(opts, pagerender.WithDevice(dev))

	progress := term.IsTerminal(int(os.Stderr.Fd()))
	var thumbs []image.Image
	for i, c := range cases {
		if progress {
			fmt.Fprintf(os.Stderr, "\r\033[K[%d/%d] %s", i+1, len(cases), c.name)
		}
		src := schedule.Pages{c.tc.Page()}
		img, err := pagerender.Render(ctx, src, schedule.Request{Zoom: *zoom}, opts...)
		if err != nil {
			return fmt.Errorf("%s: %w", c.name, err)
		}
		if err := imaging.Save(img, filepath.Join(*outDir, c.name+".png")); err != nil {
			return err
		}
		if *sheet {
			thumbs = append(thumbs, imaging.Fit(img, thumbSize, thumbSize, imaging.Lanczos))
		}
	}
	if progress {
		fmt.Fprintf(os.Stderr, "\r\033[K%d pages written to %s\n", len(cases), *outDir)
	}

	if *sheet {
		if err := imaging.Save(contactSheet(thumbs), filepath.Join(*outDir, "sheet.png")); err != nil {
			return err
		}
	}

	if *pdfFile != "" {
		if err := writePDF(*pdfFile, cases); err != nil {
			return err
		}
	}
	return nil
}

// selectCases returns the test cases whose full name matches pattern,
// sorted by category.
func selectCases(pattern string) ([]namedCase, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	var res []namedCase
	for _, category := range slices.Sorted(maps.Keys(testcases.All)) {
		for _, tc := range testcases.All[category] {
			name := category + "_" + tc.Name
			if re.MatchString(name) {
				res = append(res, namedCase{name: name, tc: tc})
			}
		}
	}
	return res, nil
}

// contactSheet arranges the thumbnails in a grid on a light grey
// background.
func contactSheet(thumbs []image.Image) image.Image {
	const gap = 8
	cols := 8
	rows := (len(thumbs) + cols - 1) / cols
	cell := thumbSize + gap
	res := imaging.New(cols*cell+gap, rows*cell+gap, color.NRGBA{R: 0xdd, G: 0xdd, B: 0xdd, A: 0xff})
	for i, t := range thumbs {
		x := gap + (i%cols)*cell
		y := gap + (i/cols)*cell
		res = imaging.Paste(res, t, image.Pt(x, y))
	}
	return res
}

func writePDF(fname string, cases []namedCase) error {
	tcs := make([]testcases.Case, len(cases))
	for i, c := range cases {
		tcs[i] = c.tc
	}

	f, err := os.Create(fname)
	if err != nil {
		return err
	}
	err = testcases.WritePDF(f, tcs)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	return err
}
