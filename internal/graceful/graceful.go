package graceful

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
)

func MakeSigintChan() chan os.Signal {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	return sigCh
}

// CancelOnSignal returns a context cancelled on SIGINT or SIGTERM. The
// returned stop func releases the signal handler.
func CancelOnSignal(ctx context.Context, logger logrus.FieldLogger) (context.Context, func()) {
	ctx, cancel := context.WithCancel(ctx)
	sigCh := MakeSigintChan()
	done := make(chan struct{})

	go func() {
		select {
		case sig := <-sigCh:
			logger.Warnf("received %s, cancelling run", sig)
			cancel()
		case <-done:
		}
	}()

	return ctx, func() {
		signal.Stop(sigCh)
		close(done)
		cancel()
	}
}
