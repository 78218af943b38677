package main

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/rs/zerolog"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/bootstrap"
)

type fakeWorker struct {
	startErr error
	stopErr  error

	started bool
	stopped bool
}

func (f *fakeWorker) Start(context.Context) error {
	f.started = true
	return f.startErr
}

func (f *fakeWorker) Stop(context.Context) error {
	f.stopped = true
	return f.stopErr
}

func builderFor(w *fakeWorker, cleaned *bool) builder {
	return func() (bootstrap.Worker, func(), error) {
		return w, func() { *cleaned = true }, nil
	}
}

func interrupted() chan os.Signal {
	ch := make(chan os.Signal, 1)
	ch <- os.Interrupt
	return ch
}

func TestRun_BootstrapFail(t *testing.T) {
	build := func() (bootstrap.Worker, func(), error) { return nil, nil, errors.New("bad env") }
	if got := Run(build, interrupted(), zerolog.Nop()); got != 1 {
		t.Fatalf("expected 1, got %d", got)
	}
}

func TestRun_StartFail(t *testing.T) {
	w := &fakeWorker{startErr: errors.New("nil handler")}
	cleaned := false

	if got := Run(builderFor(w, &cleaned), interrupted(), zerolog.Nop()); got != 1 {
		t.Fatalf("expected 1, got %d", got)
	}
	if w.stopped {
		t.Fatalf("did not expect Stop after failed start")
	}
	if !cleaned {
		t.Fatalf("expected cleanup")
	}
}

func TestRun_SignalStopsWorker(t *testing.T) {
	w := &fakeWorker{}
	cleaned := false

	if got := Run(builderFor(w, &cleaned), interrupted(), zerolog.Nop()); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
	if !w.started || !w.stopped || !cleaned {
		t.Fatalf("started=%v stopped=%v cleaned=%v", w.started, w.stopped, cleaned)
	}
}

func TestRun_StopFail(t *testing.T) {
	w := &fakeWorker{stopErr: context.DeadlineExceeded}
	cleaned := false

	if got := Run(builderFor(w, &cleaned), interrupted(), zerolog.Nop()); got != 1 {
		t.Fatalf("expected 1, got %d", got)
	}
}
