package plugins

import (
	"context"
	"net/netip"
	"testing"

	"github.com/els0r/fluere/pkg/types"
	"github.com/stretchr/testify/require"
)

type countingHandler struct {
	name      string
	processed int
	cleaned   bool
	args      map[string]string
}

func (c *countingHandler) Name() string { return c.name }

func (c *countingHandler) ProcessRecord(*types.FlowRecord) error {
	c.processed++
	return nil
}

func (c *countingHandler) Cleanup() error {
	c.cleaned = true
	return nil
}

func TestRegistryAndDispatch(t *testing.T) {
	var handler *countingHandler
	Register("counting", func(_ context.Context, args map[string]string) (Handler, error) {
		handler = &countingHandler{name: "counting", args: args}
		return handler, nil
	})

	require.Contains(t, Available(), "counting")

	d := NewDispatcher(context.Background(), map[string]map[string]string{
		"counting":   {"key": "value"},
		"unknown":    nil, // left to the external host
		"unregister": nil,
	})

	require.NotNil(t, handler)
	require.Equal(t, "value", handler.args["key"])

	records := []*types.FlowRecord{
		{Source: netip.MustParseAddr("10.0.0.1"), Destination: netip.MustParseAddr("10.0.0.2")},
		{Source: netip.MustParseAddr("10.0.0.3"), Destination: netip.MustParseAddr("10.0.0.4")},
	}
	d.Submit(records)
	require.Equal(t, 2, handler.processed)

	d.Cleanup()
	require.True(t, handler.cleaned)
}

func TestRegisterDuplicatePanics(t *testing.T) {
	Register("dup", func(context.Context, map[string]string) (Handler, error) {
		return nil, nil
	})

	require.Panics(t, func() {
		Register("dup", func(context.Context, map[string]string) (Handler, error) {
			return nil, nil
		})
	})
}
