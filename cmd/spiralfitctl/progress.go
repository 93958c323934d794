package main

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"

	"spiralfit/internal/model"
)

// progressEvery limits in-place progress updates to one line per N generations.
const progressEvery = 10

// progressPrinter rewrites a single status line on the terminal during the
// global search. On a non-TTY stream it stays silent so piped output is clean.
type progressPrinter struct {
	out     *os.File
	enabled bool
	wrote   bool
}

func newProgressPrinter(out *os.File) *progressPrinter {
	fd := out.Fd()
	return &progressPrinter{
		out:     out,
		enabled: isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd),
	}
}

func (p *progressPrinter) observe(restart int, point model.TracePoint) {
	if !p.enabled {
		return
	}
	if point.Iteration%progressEvery != 0 {
		return
	}
	fmt.Fprintf(p.out, "\rrestart=%d generation=%d best=%.6f", restart, point.Iteration, point.Objective)
	p.wrote = true
}

func (p *progressPrinter) done() {
	if p.wrote {
		fmt.Fprintln(p.out)
		p.wrote = false
	}
}
