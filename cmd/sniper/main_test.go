package main

import (
	"context"
	"errors"
	"testing"

	"github.com/lwhx/OVH/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeService struct {
	RunFunc   func(ctx context.Context) error
	CloseFunc func() error
	calls     []string
}

func (f *fakeService) Run(ctx context.Context) error {
	f.calls = append(f.calls, "Run")
	return f.RunFunc(ctx)
}

func (f *fakeService) Close() error {
	f.calls = append(f.calls, "Close")
	return f.CloseFunc()
}

func TestRunAndClose_ClosesWhenRunFails(t *testing.T) {
	runErr := errors.New("listen tcp :5000: address already in use")
	svc := &fakeService{
		RunFunc:   func(context.Context) error { return runErr },
		CloseFunc: func() error { return nil },
	}

	err := runAndClose(context.Background(), svc, logging.Nop())
	assert.ErrorIs(t, err, runErr)
	assert.Equal(t, []string{"Run", "Close"}, svc.calls)
}

func TestRunAndClose_CloseErrorIsLogged(t *testing.T) {
	journal := logging.NewJournal(10)
	logger := logging.Nop()
	logger.AddHook(journal)
	svc := &fakeService{
		RunFunc:   func(context.Context) error { return nil },
		CloseFunc: func() error { return errors.New("redis: connection reset") },
	}

	require.NoError(t, runAndClose(context.Background(), svc, logger))
	assert.Equal(t, []string{"Run", "Close"}, svc.calls)

	entries := journal.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "WARNING", entries[0].Level)
	assert.Equal(t, "system", entries[0].Source)
	assert.Contains(t, entries[0].Message, "redis: connection reset")
}
