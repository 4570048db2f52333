package logic

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/patrickwarner/seamlessads/internal/models"
)

func TestEpisodeTermsNilEpisode(t *testing.T) {
	assert.Empty(t, EpisodeTerms(&models.SceneMetadata{}))
	assert.Empty(t, ProminentProducts(nil))
}

func TestEpisodeTermsLowercasesAllSources(t *testing.T) {
	scene := &models.SceneMetadata{Episode: &models.EpisodeMetadata{
		ShowTitle:    "Stranger Things",
		EpisodeTitle: "The Body",
		Genres:       []string{"Sci-Fi"},
		ToneTags:     []string{"Eerie"},
		SettingTags:  []string{"Small_Town"},
		Keywords:     []string{"Arcade"},
	}}

	terms := EpisodeTerms(scene)
	for _, want := range []string{"stranger things", "the body", "sci-fi", "eerie", "small_town", "arcade"} {
		assert.True(t, terms.Has(want), "missing %q", want)
	}
	assert.False(t, terms.Has("Arcade"))
}

func TestCollectSignalsUnion(t *testing.T) {
	scene := &models.SceneMetadata{
		DetectedObjects:  []models.DetectedObject{{Label: "Laptop", Confidence: 0.9, BBox: []float64{0, 0, 1, 1}}},
		SceneTags:        []string{"Kitchen"},
		DialogueKeywords: []string{"HUNGRY"},
		Episode: &models.EpisodeMetadata{
			Keywords:          []string{"friends"},
			ProminentProducts: []models.ProductSignal{{Category: "Beverage", Brands: []string{"Coca-Cola"}, Prominence: "high"}},
		},
	}

	sig := CollectSignals(scene)
	assert.True(t, sig.All.Intersects("laptop"))
	assert.True(t, sig.All.Has("kitchen"))
	assert.True(t, sig.All.Has("hungry"))
	assert.True(t, sig.All.Has("friends"))
	assert.False(t, sig.All.Has("beverage"), "prominent products are not part of the scene terms")
	assert.True(t, sig.Prominent.Has("coca-cola"))
}
