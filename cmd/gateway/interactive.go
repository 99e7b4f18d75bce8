package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"

	"github.com/tracker-fw/cloud-gateway/pkg/gateway"
	"github.com/tracker-fw/cloud-gateway/pkg/messages"
	"github.com/tracker-fw/cloud-gateway/pkg/storage"
	"github.com/tracker-fw/cloud-gateway/pkg/storagefake"
	"github.com/tracker-fw/cloud-gateway/pkg/transportfake"
)

// runInteractive replaces the synthetic feed with a readline prompt that
// lets an operator drive the core's bus channels by hand: bring the radio
// up or down, enqueue a batch session, push a realtime item, or forward a
// cloud-in request, observing the resulting Connected/Disconnected/shadow
// traffic on stderr via the protocol logger.
func runInteractive(ctx context.Context, stop context.CancelFunc, hub *gateway.Hub, store *storagefake.Fake, xport *transportfake.Fake) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "gateway> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
	})
	if err != nil {
		return fmt.Errorf("interactive: %w", err)
	}
	defer rl.Close()

	printInteractiveHelp(rl.Stderr())

	var sessionID uint32
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			stop()
			return nil
		}
		if err != nil {
			return err
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "network":
			handleNetworkCommand(rl.Stderr(), hub, fields)

		case "enqueue":
			sessionID++
			store.Enqueue(sessionID, storage.Item{Kind: messages.ItemKindPower, Payload: []byte("interactive")})
			fmt.Fprintf(rl.Stderr(), "enqueued session %d\n", sessionID)

		case "realtime":
			_ = hub.StorageData.Publish(messages.RealtimeItem{Kind: messages.ItemKindEnvironmental, Payload: []byte("interactive")})

		case "send":
			body := []byte(strings.Join(fields[1:], " "))
			if len(body) == 0 {
				body = []byte("{}")
			}
			_ = hub.CloudIn.Publish(messages.SendJsonPayload{Body: body})

		case "shadow":
			handleShadowCommand(rl.Stderr(), hub, fields)

		case "provision":
			_ = hub.CloudIn.Publish(messages.ProvisioningRequest{})

		case "status":
			fmt.Fprintf(rl.Stderr(), "transport connected: %v, items sent: %d\n", xport.Connected(), len(xport.SentItems()))

		case "help":
			printInteractiveHelp(rl.Stderr())

		case "quit", "exit":
			stop()
			return nil

		default:
			fmt.Fprintf(rl.Stderr(), "unknown command %q, type 'help'\n", fields[0])
		}
	}
}

func handleNetworkCommand(w io.Writer, hub *gateway.Hub, fields []string) {
	if len(fields) < 2 {
		fmt.Fprintln(w, "usage: network <up|down>")
		return
	}
	switch fields[1] {
	case "up":
		_ = hub.Network.Publish(messages.NetworkConnected{})
	case "down":
		_ = hub.Network.Publish(messages.NetworkDisconnected{})
	default:
		fmt.Fprintln(w, "usage: network <up|down>")
	}
}

func handleShadowCommand(w io.Writer, hub *gateway.Hub, fields []string) {
	if len(fields) < 2 {
		fmt.Fprintln(w, "usage: shadow <delta|desired|report>")
		return
	}
	switch fields[1] {
	case "delta":
		_ = hub.CloudIn.Publish(messages.ShadowPollDelta{})
	case "desired":
		_ = hub.CloudIn.Publish(messages.ShadowPollDesired{})
	case "report":
		_ = hub.CloudIn.Publish(messages.ShadowReportReported{Body: []byte(strings.Join(fields[2:], " "))})
	default:
		fmt.Fprintln(w, "usage: shadow <delta|desired|report>")
	}
}

func printInteractiveHelp(w io.Writer) {
	fmt.Fprint(w, `commands:
  network <up|down>   toggle the simulated radio link
  enqueue             announce a new storage batch session
  realtime            push one realtime storage item
  send <json>         forward a JSON payload over the cloud channel
  shadow <delta|desired|report [body]>
  provision           request an out-of-band credential refresh
  status              show transport connection/send counters
  help                show this text
  quit                exit
`)
}
