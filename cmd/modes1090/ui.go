package main

import (
	"fmt"
	"sort"
	"time"

	"github.com/awesome-gocui/gocui"
	. "github.com/logrusorgru/aurora"

	"modes1090/track"
)

// interactiveUI draws a refreshing aircraft table: a one-line status bar
// over a scrolling list, extended with the NUCp and source columns the
// tracker carries.
type interactiveUI struct {
	g        *gocui.Gui
	registry *track.Registry
}

func newInteractiveUI(registry *track.Registry) (*interactiveUI, error) {
	g, err := gocui.NewGui(gocui.OutputNormal, false)
	if err != nil {
		return nil, fmt.Errorf("interactive display: %w", err)
	}
	ui := &interactiveUI{g: g, registry: registry}
	g.SetManagerFunc(ui.layout)
	if err := g.SetKeybinding("", gocui.KeyCtrlC, gocui.ModNone, quitUI); err != nil {
		g.Close()
		return nil, err
	}
	return ui, nil
}

func (ui *interactiveUI) Close() {
	ui.g.Close()
}

// Refresh redraws the table from the current registry snapshot. Safe to
// call once per hot-loop iteration; gocui coalesces redundant draws.
func (ui *interactiveUI) Refresh() {
	ui.g.Update(ui.draw)
}

func (ui *interactiveUI) layout(g *gocui.Gui) error {
	const maxX = 100
	_, maxY := g.Size()

	v, _ := g.SetView("status", 0, 0, maxX-2, 2, 0)
	v.Title = " STATUS "
	fmt.Fprintln(v, " A/C: --  LAST UPDATE: 0000-00-00 00:00:00")

	v, _ = g.SetView("list", 0, 3, maxX-2, maxY-1, 0)
	v.Title = " A/C "
	return nil
}

func (ui *interactiveUI) draw(g *gocui.Gui) error {
	snapshot := ui.registry.Snapshot()

	s, err := g.View("status")
	if err != nil {
		return nil
	}
	s.Clear()
	fmt.Fprintf(s, " A/C: %02d  LAST UPDATE: %s\n",
		Green(len(snapshot)),
		Bold(Green(time.Now().Format("2006-01-02 15:04:05"))))

	l, err := g.View("list")
	if err != nil {
		return nil
	}
	l.Clear()
	fmt.Fprintln(l, " ICAO    FLIGHT     ALT    SPD   HDG     LAT      LON  NUC  SRC")
	fmt.Fprintln(l, " ====================================================================")

	sort.Slice(snapshot, func(i, j int) bool { return snapshot[i].Addr < snapshot[j].Addr })

	for _, ac := range snapshot {
		callsign, _ := ac.Callsign.Get()
		alt, _ := ac.Altitude.Get()
		speed, _ := ac.Speed.Get()
		heading, _ := ac.Heading.Get()
		pos, hasPos := ac.Position.Get()

		lat, lon := "", ""
		nuc := ""
		if hasPos {
			lat = fmt.Sprintf("%7.3f", pos.Lat)
			lon = fmt.Sprintf("%8.3f", pos.Lon)
			nuc = fmt.Sprintf("%d", pos.NUCp)
		}

		fmt.Fprintln(l, Sprintf(Yellow(" %06X  %-9s  %-5d  %-4d  %-3.0f  %7s  %8s  %3s  %d"),
			ac.Addr,
			callsign,
			alt.Feet,
			speed,
			heading,
			lat,
			lon,
			nuc,
			ac.AddrType))
	}
	return nil
}

func quitUI(g *gocui.Gui, v *gocui.View) error {
	return gocui.ErrQuit
}
