// ABOUTME: Entry point for the stepseq step sequencer
// ABOUTME: Parses CLI flags and runs the session, TUI and remote control server
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Resonate-Protocol/stepseq-go/internal/config"
	"github.com/Resonate-Protocol/stepseq-go/internal/control"
	"github.com/Resonate-Protocol/stepseq-go/internal/ui"
	"github.com/Resonate-Protocol/stepseq-go/internal/version"
	"github.com/Resonate-Protocol/stepseq-go/pkg/audio"
	"github.com/Resonate-Protocol/stepseq-go/pkg/audio/output"
	"github.com/Resonate-Protocol/stepseq-go/pkg/sequencer"
	"golang.org/x/sync/errgroup"
)

var (
	bpm         = flag.Int("bpm", 0, "Tempo in BPM, 30-300 (default from config, 120)")
	steps       = flag.Int("steps", 0, "Pattern length in steps (default from config, 16)")
	port        = flag.Int("port", 0, "Remote control WebSocket port, 0 disables (default from config, 8928)")
	name        = flag.String("name", "", "Session name for mDNS (default: hostname-stepseq)")
	noMDNS      = flag.Bool("no-mdns", false, "Disable mDNS advertisement")
	noTUI       = flag.Bool("no-tui", false, "Disable TUI, use streaming logs instead")
	headless    = flag.Bool("headless", false, "Do not open an audio device")
	logFile     = flag.String("log-file", "stepseq.log", "Log file path")
	debug       = flag.Bool("debug", false, "Enable debug logging")
	configPath  = flag.String("config", "", "Config file path (default: ~/.config/stepseq/config.json)")
	exportPath  = flag.String("export", "", "Render the pattern to this WAV file and exit")
	showVersion = flag.Bool("version", false, "Print version and exit")
	samples     sampleList
)

func main() {
	flag.Var(&samples, "sample", "Preload a channel: path[@pattern], pattern like x...x... (repeatable)")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	applyFlags(cfg)

	exportOnly := *exportPath != ""
	useTUI := !*noTUI && !exportOnly

	// Set up logging
	f, err := os.OpenFile(*logFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("error opening log file: %v", err)
	}
	defer func() { _ = f.Close() }()

	if useTUI {
		// TUI mode: log only to file
		log.SetOutput(f)
	} else {
		log.SetOutput(io.MultiWriter(os.Stdout, f))
	}

	log.Printf("Starting %s: %s (%d BPM, %d steps)", version.String(), cfg.Control.Name, cfg.Session.BPM, cfg.Session.Steps)
	if *debug {
		log.Printf("Debug logging enabled")
	}

	out := openOutput(cfg, *headless || exportOnly)
	defer func() { _ = out.Close() }()

	// Session callbacks fan out to the TUI and remote clients
	notifier := ui.NewNotifier()
	var srv *control.Server
	onChange := func() {
		notifier.Notify()
		if srv != nil {
			srv.BroadcastState()
		}
	}

	session := sequencer.NewSession(sequencer.Config{
		BPM:      cfg.Session.BPM,
		Steps:    cfg.Session.Steps,
		Player:   out,
		OnStep:   func(int) { onChange() },
		OnChange: onChange,
	})

	if err := preload(session, samples); err != nil {
		log.Fatalf("Failed to preload samples: %v", err)
	}

	if exportOnly {
		if err := session.Export(*exportPath); err != nil {
			log.Fatalf("Export failed: %v", err)
		}
		return
	}

	dirs := cfg.Dirs()
	log.Printf("Export dir: %s, sample dirs: %v", dirs.Export, dirs.Samples)

	if cfg.Control.Port > 0 {
		srv = control.New(control.Config{
			Port:       cfg.Control.Port,
			Name:       cfg.Control.Name,
			EnableMDNS: cfg.Control.EnableMDNS,
			Debug:      *debug,
			Dirs:       dirs,
		}, session)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	if srv != nil {
		g.Go(srv.Start)
		g.Go(func() error {
			<-gctx.Done()
			srv.Stop()
			return nil
		})
	}

	if useTUI {
		prog := ui.Run(session, cfg.Control.Name, cfg.Control.Port, dirs)

		var remotes func() int
		if srv != nil {
			remotes = srv.ClientCount
		}

		g.Go(func() error {
			notifier.Run(gctx, prog.Send, session.State, remotes)
			return nil
		})
		g.Go(func() error {
			_, err := prog.Run()
			log.Printf("TUI exited")
			stop()
			return err
		})
		g.Go(func() error {
			<-gctx.Done()
			prog.Quit()
			return nil
		})
	} else {
		log.Printf("TUI disabled - press Ctrl-C to stop")
		g.Go(func() error {
			<-gctx.Done()
			log.Printf("Shutdown signal received")
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		log.Printf("Exited with error: %v", err)
	}

	session.Stop()
	log.Printf("Sequencer stopped")
}

// loadConfig reads the config file named by -config, or the default one
func loadConfig() (*config.Config, error) {
	if *configPath != "" {
		return config.LoadFrom(*configPath)
	}
	return config.Load()
}

// applyFlags overrides config values with flags given on the command line
func applyFlags(cfg *config.Config) {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "bpm":
			cfg.Session.BPM = *bpm
		case "steps":
			cfg.Session.Steps = *steps
		case "port":
			cfg.Control.Port = *port
		case "name":
			cfg.Control.Name = *name
		case "no-mdns":
			cfg.Control.EnableMDNS = !*noMDNS
		}
	})

	// An unset name means hostname-stepseq
	if *name == "" && (cfg.Control.Name == "" || cfg.Control.Name == config.DefaultConfig().Control.Name) {
		hostname, err := os.Hostname()
		if err != nil {
			hostname = "unknown"
		}
		cfg.Control.Name = fmt.Sprintf("%s-stepseq", hostname)
	}
}

// openOutput opens the audio device, falling back to headless output
func openOutput(cfg *config.Config, headless bool) output.Output {
	format := audio.Format{
		Codec:      "pcm",
		SampleRate: cfg.Output.SampleRate,
		Channels:   cfg.Output.Channels,
		BitDepth:   16,
	}

	if !headless {
		out := output.NewOto()
		err := out.Open(format)
		if err == nil {
			return out
		}
		log.Printf("Audio device unavailable, running headless: %v", err)
	}

	out := output.NewHeadless(nil)
	if err := out.Open(format); err != nil {
		log.Printf("Headless output rejected format %v, using default: %v", format, err)
		_ = out.Open(audio.DefaultFormat())
	}
	return out
}
