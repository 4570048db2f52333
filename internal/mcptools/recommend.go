package mcptools

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/patrickwarner/seamlessads/internal/logic"
	"github.com/patrickwarner/seamlessads/internal/models"
	"github.com/patrickwarner/seamlessads/internal/personas"
)

// RecommendAdInput are the recommend_ad arguments. User wins over UserKey.
type RecommendAdInput struct {
	Scene   models.SceneMetadata `json:"scene" jsonschema:"scene metadata from the video understanding system"`
	User    *models.UserProfile  `json:"user,omitempty" jsonschema:"viewer profile"`
	UserKey string               `json:"user_key,omitempty" jsonschema:"persona key used when user is absent"`
	Debug   bool                 `json:"debug,omitempty" jsonschema:"include the selector rule trace"`
}

// RecommendAdOutput is the ad response with an optional rule trace.
type RecommendAdOutput struct {
	Response models.AdResponse     `json:"response"`
	Debug    *logic.SelectionTrace `json:"debug,omitempty"`
}

// RecommendAd runs the recommendation pipeline for a scene.
func (t *Tools) RecommendAd(ctx context.Context, _ *mcp.CallToolRequest, in RecommendAdInput) (*mcp.CallToolResult, RecommendAdOutput, error) {
	var user models.UserProfile
	switch {
	case in.User != nil:
		user = *in.User
	case in.UserKey != "":
		p, err := personas.Get(in.UserKey)
		if err != nil {
			return nil, RecommendAdOutput{}, err
		}
		user = p
	default:
		return nil, RecommendAdOutput{}, errors.New("user or user_key required")
	}

	var trace *logic.SelectionTrace
	if in.Debug {
		trace = &logic.SelectionTrace{}
	}
	resp, err := t.Ads.GenerateAdResponseWithTrace(ctx, user, in.Scene, trace)
	if err != nil {
		return nil, RecommendAdOutput{}, err
	}
	return nil, RecommendAdOutput{Response: resp, Debug: trace}, nil
}
