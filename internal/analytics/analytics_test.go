package analytics

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patrickwarner/seamlessads/internal/observability"
)

const mentionDoc = `{
  "video_id": "vid-1",
  "scenes": [
    {"scene_id": "s1", "timestamp_range": [0, 12.5], "product_mentions": [
      {"product_name": "Coke", "brand": "Coca-Cola", "category": "beverage", "confidence": 0.9,
       "evidence": {"visual": "red can", "dialogue": null}},
      {"product_name": "Pizza", "category": "frozen"}
    ]},
    {"scene_id": "s2", "timestamp_range": [13]}
  ]
}`

func writeDoc(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "episode.json")
	require.NoError(t, os.WriteFile(path, []byte(mentionDoc), 0o600))
	return path
}

func TestPrepareLoadBuildsRows(t *testing.T) {
	scenes, mentions, err := PrepareLoad([]string{writeDoc(t)})
	require.NoError(t, err)

	require.Len(t, scenes, 2)
	assert.Equal(t, "vid-1", scenes[0].VideoID)
	assert.Equal(t, "episode.json", scenes[0].SourceFile)
	require.NotNil(t, scenes[0].SceneEnd)
	assert.Equal(t, 12.5, *scenes[0].SceneEnd)
	assert.Contains(t, scenes[0].ProductMentions, `"brand":"Coca-Cola"`)
	assert.Equal(t, "[]", scenes[1].ProductMentions)
	require.NotNil(t, scenes[1].SceneStart)
	assert.Nil(t, scenes[1].SceneEnd)

	require.Len(t, mentions, 2)
	assert.Equal(t, "s1", mentions[0].SceneID)
	assert.Equal(t, "red can", *mentions[0].EvidenceVisual)
	assert.Nil(t, mentions[0].EvidenceDialogue)
	assert.Nil(t, mentions[1].Brand)
	assert.Nil(t, mentions[1].EvidenceVisual)
	assert.Equal(t, 0.9, *mentions[0].Confidence)
}

func TestPrepareLoadMissingFile(t *testing.T) {
	_, _, err := PrepareLoad([]string{filepath.Join(t.TempDir(), "nope.json")})
	assert.Error(t, err)
}

func TestUnconfiguredAnalytics(t *testing.T) {
	var a *Analytics
	ctx := context.Background()
	assert.ErrorIs(t, a.RecordRecommendation(ctx, RecommendationEvent{}), ErrUnavailable)

	_, err := a.RecommendationsByScene(ctx, "s1", 10)
	assert.ErrorIs(t, err, ErrUnavailable)

	_, err = (&Analytics{}).LoadMentions(ctx, nil, nil, 0)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestMockAnalytics(t *testing.T) {
	m := NewMockAnalytics()
	require.NoError(t, m.RecordRecommendation(context.Background(), RecommendationEvent{SceneID: "s1"}))
	assert.Len(t, m.Events(), 1)

	m.Err = errors.New("down")
	assert.Error(t, m.RecordRecommendation(context.Background(), RecommendationEvent{}))
	assert.Len(t, m.Events(), 1)
}

func TestClickHouseRoundTrip(t *testing.T) {
	dsn := os.Getenv("CLICKHOUSE_TEST_DSN")
	if dsn == "" {
		t.Skip("CLICKHOUSE_TEST_DSN not set")
	}
	a, err := InitClickHouse(dsn, observability.NewNoOpRegistry(), 2, 1, time.Minute, time.Minute)
	require.NoError(t, err)
	defer a.Close()

	ctx := context.Background()
	sceneID := "test-" + time.Now().Format("150405.000000")
	require.NoError(t, a.RecordRecommendation(ctx, RecommendationEvent{
		SceneID: sceneID, ProductKey: "coke", Rule: "scene_beverage", ProductIDs: []string{"a", "b"},
	}))
	got, err := a.RecommendationsByScene(ctx, sceneID, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, []string{"a", "b"}, got[0].ProductIDs)

	scenes, mentions, err := PrepareLoad([]string{writeDoc(t)})
	require.NoError(t, err)
	res, err := a.LoadMentions(ctx, scenes, mentions, 1)
	require.NoError(t, err)
	assert.Equal(t, LoadResult{Scenes: 2, Mentions: 2}, res)
}
