package observable_test

import (
	"context"
	"errors"
	"sync"

	"github.com/AntonStoeckl/library-circulation-go/circulation/shell"
)

type testCommand struct{}

func (testCommand) CommandType() string { return "TestCommand" }

type testQuery struct{}

func (testQuery) QueryType() string { return "TestQuery" }

type commandHandlerStub struct {
	result shell.HandlerResult
	err    error
	calls  []testCommand
	mu     sync.Mutex
}

func (h *commandHandlerStub) Handle(_ context.Context, command testCommand) (shell.HandlerResult, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.calls = append(h.calls, command)

	return h.result, h.err
}

type queryHandlerStub struct {
	result []string
	err    error
}

func (h queryHandlerStub) Handle(_ context.Context, _ testQuery) ([]string, error) {
	return h.result, h.err
}

var errBoom = errors.New("boom")
