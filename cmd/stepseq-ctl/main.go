// ABOUTME: Entry point for the stepseq remote control CLI
// ABOUTME: Finds a running sequencer and sends it one command
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/Resonate-Protocol/stepseq-go/internal/client"
	"github.com/Resonate-Protocol/stepseq-go/internal/discovery"
	"github.com/Resonate-Protocol/stepseq-go/internal/protocol"
	"github.com/Resonate-Protocol/stepseq-go/internal/version"
)

var (
	serverAddr = flag.String("server", "", "Manual sequencer address host:port (skip mDNS)")
	timeout    = flag.Duration("timeout", 5*time.Second, "Discovery and request timeout")
	verbose    = flag.Bool("v", false, "Log connection details to stderr")
)

func main() {
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}

	log.SetOutput(os.Stderr)
	if !*verbose {
		log.SetOutput(io.Discard)
	}

	addr, path := *serverAddr, protocol.Path
	if addr == "" {
		server, err := discover(*timeout)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		addr, path = server.Addr(), server.Path
	}

	c := client.NewClient(client.Config{
		ServerAddr: addr,
		Path:       path,
		Name:       version.Product + "-ctl",
		DeviceInfo: protocol.DeviceInfo{
			ProductName:     version.Product,
			Manufacturer:    version.Manufacturer,
			SoftwareVersion: version.Version,
		},
	})
	if err := c.Connect(); err != nil {
		fmt.Fprintf(os.Stderr, "connect %s: %v\n", addr, err)
		os.Exit(1)
	}
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := run(ctx, c, flag.Args(), os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		c.Close()
		os.Exit(1)
	}
}

// discover waits for the first sequencer advertised over mDNS
func discover(wait time.Duration) (*discovery.ServerInfo, error) {
	log.Printf("Starting sequencer discovery...")
	disc := discovery.NewManager(discovery.Config{})
	defer disc.Stop()

	if err := disc.Browse(); err != nil {
		return nil, fmt.Errorf("discovery failed: %w", err)
	}

	select {
	case server := <-disc.Servers():
		log.Printf("Discovered %s at %s", server.Name, server.Addr())
		return server, nil
	case <-time.After(wait):
		return nil, fmt.Errorf("no sequencer found after %v", wait)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: %s [flags] <command> [args]

Commands:
  state                     print the session
  add                       add a channel and print its id
  delete <channel>          remove a channel
  load <channel> <path>     load a sample from the sequencer's sample dirs
  toggle <channel> <step>   flip one step
  volume <channel> <0-1>    set channel volume
  pitch <channel> <semis>   set channel pitch, -12 to 12
  bpm <bpm>                 set the tempo
  start                     start the transport
  stop                      stop the transport
  export <path>             render the pattern into the sequencer's export dir

Flags:
`, os.Args[0])
	flag.PrintDefaults()
}
