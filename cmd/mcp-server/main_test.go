package main

import (
	"context"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/patrickwarner/seamlessads/internal/app"
	"github.com/patrickwarner/seamlessads/internal/config"
	"github.com/patrickwarner/seamlessads/internal/mcptools"
)

func TestBuildServerServesShoppingFlow(t *testing.T) {
	ctx := context.Background()
	deps, err := app.Open(ctx, config.Config{
		CatalogBackend: config.CatalogMock,
		CartBackend:    config.CartMemory,
	}, zap.NewNop(), nil)
	require.NoError(t, err)
	defer deps.Close()

	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	ss, err := buildServer(deps).Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	defer func() { _ = ss.Close() }()

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	defer func() { _ = session.Close() }()

	res, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      mcptools.ToolAddToCart,
		Arguments: map[string]any{"product_id": "unknown-sku", "quantity": 2},
	})
	require.NoError(t, err)
	assert.False(t, res.IsError)
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	assert.Contains(t, text.Text, "Added 2x Product unknown-sku to cart")

	res, err = session.CallTool(ctx, &mcp.CallToolParams{
		Name:      mcptools.ToolViewCart,
		Arguments: map[string]any{"cart_id": "does-not-exist"},
	})
	require.NoError(t, err)
	assert.True(t, res.IsError)
}
