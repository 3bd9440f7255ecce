// Command modes1090 wires the raw-IQ ingest, demodulator, decoder, and
// tracker into the single-threaded cooperative hot loop: read a batch
// of IQ samples, demodulate it, fan the resulting frames out to BEAST/
// AVR clients, then poll for newly connected clients, repeat.
package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"modes1090/beast"
	"modes1090/config"
	"modes1090/demod"
	"modes1090/icaofilter"
	"modes1090/iqbuffer"
	"modes1090/modes"
	"modes1090/sdr"
	"modes1090/track"
)

const sdrReadTimeout = 5 * time.Second

type options struct {
	host         string
	port         int
	driver       string
	driverExtra  []string
	customConfig string
	quiet        bool
	interactive  bool
}

func main() {
	opts := &options{}
	root := &cobra.Command{
		Use:   "modes1090",
		Short: "1090 MHz Mode S / ADS-B receiver",
		Long: `modes1090 demodulates 1090 MHz Mode S / ADS-B transmissions from a
stream of IQ samples, decodes and tracks aircraft, and fans decoded
frames out over TCP in AVR/BEAST-compatible ASCII format.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(opts)
		},
	}

	flags := root.Flags()
	flags.StringVar(&opts.host, "host", "127.0.0.1", "TCP fan-out bind host")
	flags.IntVar(&opts.port, "port", 30002, "TCP fan-out bind port")
	flags.StringVar(&opts.driver, "driver", "rtl_sdr", "SDR driver executable")
	flags.StringArrayVar(&opts.driverExtra, "driver-extra", nil, "extra KEY=VAL driver argument, repeatable")
	flags.StringVar(&opts.customConfig, "custom-config", "", "path to a TOML gain-config file")
	flags.BoolVar(&opts.quiet, "quiet", false, "only log warnings and errors")
	flags.BoolVar(&opts.interactive, "interactive", false, "show an interactive aircraft table")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(opts *options) error {
	log := logrus.New()
	if opts.quiet {
		log.SetLevel(logrus.WarnLevel)
	}

	var cfg *config.Config
	if opts.customConfig != "" {
		loaded, err := config.Load(opts.customConfig)
		if err != nil {
			log.WithError(err).Error("failed to load gain config")
			return err
		}
		cfg = loaded
		log.WithField("path", opts.customConfig).Info("loaded gain config")
	}

	driverArgs := buildDriverArgs(cfg, opts.driverExtra)
	log.WithFields(logrus.Fields{"driver": opts.driver, "args": driverArgs}).Info("starting SDR driver")

	src, err := sdr.OpenSubprocess(opts.driver, driverArgs, sdr.FormatU8, sdrReadTimeout)
	if err != nil {
		log.WithError(err).Error("failed to start SDR driver")
		return err
	}
	defer src.Close()

	addr := fmt.Sprintf("%s:%d", opts.host, opts.port)
	server, err := beast.NewServer(addr, log)
	if err != nil {
		log.WithError(err).Error("failed to bind TCP fan-out")
		return err
	}
	defer server.Close()
	log.WithField("addr", server.Addr()).Info("beast fan-out listening")

	filter := icaofilter.New()
	legacy := modes.NewLegacyAddressCache()
	registry := track.NewRegistry()
	pair := iqbuffer.NewPair()

	var ui *interactiveUI
	if opts.interactive {
		ui, err = newInteractiveUI(registry)
		if err != nil {
			log.WithError(err).Error("failed to start interactive display")
			return err
		}
		defer ui.Close()
	}

	return hotLoop(log, src, server, filter, legacy, registry, pair, ui)
}

// hotLoop is the cooperative scheduling core: IQ samples are fed in, a
// batch is processed, output frames are fanned out, then the loop polls
// for new TCP clients. The only suspension points are the SDR read
// (bounded by sdrReadTimeout) and each client write inside Broadcast.
func hotLoop(log *logrus.Logger, src *sdr.Source, server *beast.Server, filter *icaofilter.Filter, legacy *modes.LegacyAddressCache, registry *track.Registry, pair *iqbuffer.Pair, ui *interactiveUI) error {
	for {
		buf := pair.Current()
		if err := src.FillBuffer(buf); err != nil {
			log.WithError(err).Error("SDR read failed")
			return err
		}

		for _, frame := range demod.Demodulate2400(buf, filter) {
			raw := frame.Msg[:frame.MsgLen.Bytes()]
			decoded, err := modes.Decode(raw, filter, legacy)
			if err != nil {
				continue
			}
			decoded.MsgLen = frame.MsgLen
			decoded.Msg = frame.Msg
			decoded.SignalLevel = frame.SignalLevel
			decoded.Score = frame.Score
			decoded.Timestamp = frame.Timestamp
			decoded.PhaseCorrected = frame.PhaseCorrected

			registry.Update(decoded, int64(decoded.Timestamp/12000))
			server.Broadcast(raw)

			log.WithFields(logrus.Fields{
				"icao":  fmt.Sprintf("%06X", decoded.ICAO),
				"df":    decoded.DF,
				"score": decoded.Score,
			}).Debug("decoded frame")
		}

		server.AcceptPending()

		if ui != nil {
			ui.Refresh()
		}

		pair.NextBuffer(2_400_000)
	}
}

// buildDriverArgs turns a loaded gain config plus repeated --driver-extra
// KEY=VAL flags into a flat argument list for the SDR subprocess.
func buildDriverArgs(cfg *config.Config, extra []string) []string {
	var args []string
	if cfg != nil {
		for _, s := range cfg.SDR {
			args = append(args, "--channel", fmt.Sprintf("%d", s.Channel))
			if s.Antenna.Name != "" {
				args = append(args, "--antenna", s.Antenna.Name)
			}
			for _, setting := range s.Setting {
				args = append(args, fmt.Sprintf("--%s=%s", setting.Key, setting.Value))
			}
			for _, gain := range s.Gain {
				args = append(args, fmt.Sprintf("--gain-%s=%g", gain.Key, gain.Value))
			}
		}
	}
	for _, kv := range extra {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		args = append(args, fmt.Sprintf("--%s=%s", k, v))
	}
	return args
}
