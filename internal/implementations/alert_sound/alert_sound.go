package alertsound

import (
	"context"
	"os/exec"
	"strings"
	"sync"
	e "waterreminder/internal/core/domain/errors"
	"waterreminder/internal/core/domain/logging"
)

// CommandPlayer plays the alert tone by running an external command over and
// over until stopped. An empty command makes the player silent.
type CommandPlayer struct {
	log     logging.Logger
	command []string

	lock   sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewCommandPlayer(log logging.Logger, command string) *CommandPlayer {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	return &CommandPlayer{log: log, command: strings.Fields(command)}
}

func (p *CommandPlayer) Start(ctx context.Context) error {
	p.lock.Lock()
	defer p.lock.Unlock()

	if len(p.command) == 0 || p.cancel != nil {
		return nil
	}

	// Playback outlives the request that started it.
	loopCtx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.done = make(chan struct{})
	go p.loop(loopCtx, p.done)

	p.log.Debug(ctx, "Alert sound started.", logging.Entry("command", p.command))
	return nil
}

func (p *CommandPlayer) Stop(ctx context.Context) error {
	p.lock.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.lock.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()
	<-done

	p.log.Debug(ctx, "Alert sound stopped.")
	return nil
}

func (p *CommandPlayer) IsPlaying() bool {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.cancel != nil
}

func (p *CommandPlayer) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	for {
		cmd := exec.CommandContext(ctx, p.command[0], p.command[1:]...)
		err := cmd.Run()
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			p.log.Warning(
				ctx,
				"Alert sound command failed, sound disabled for this alert.",
				logging.Entry("command", p.command),
				logging.Entry("err", err),
			)
			return
		}
	}
}
