package logic

import (
	"strings"

	"github.com/patrickwarner/seamlessads/internal/models"
)

// TermSet is a set of lowercased signal terms.
type TermSet map[string]struct{}

// NewTermSet builds a set from terms, lowercasing each one.
func NewTermSet(terms ...string) TermSet {
	s := make(TermSet, len(terms))
	s.Add(terms...)
	return s
}

// Add inserts terms lowercased.
func (s TermSet) Add(terms ...string) {
	for _, t := range terms {
		s[strings.ToLower(t)] = struct{}{}
	}
}

// Has reports whether term (already lowercased) is present.
func (s TermSet) Has(term string) bool {
	_, ok := s[term]
	return ok
}

// Intersects reports whether any of the given terms is present.
func (s TermSet) Intersects(terms ...string) bool {
	for _, t := range terms {
		if s.Has(t) {
			return true
		}
	}
	return false
}

// Union returns a new set containing the members of all sets.
func Union(sets ...TermSet) TermSet {
	out := make(TermSet)
	for _, s := range sets {
		for t := range s {
			out[t] = struct{}{}
		}
	}
	return out
}

// EpisodeTerms returns the lowercased genres, tone, setting tags, keywords and
// both titles of the scene's episode. A scene without episode metadata yields
// an empty set.
func EpisodeTerms(scene *models.SceneMetadata) TermSet {
	s := make(TermSet)
	if scene == nil || scene.Episode == nil {
		return s
	}
	ep := scene.Episode
	s.Add(ep.Genres...)
	s.Add(ep.ToneTags...)
	s.Add(ep.SettingTags...)
	s.Add(ep.Keywords...)
	s.Add(ep.ShowTitle, ep.EpisodeTitle)
	return s
}

// ProminentProducts returns the lowercased category, labels and brands of
// every prominent product signal in the scene's episode.
func ProminentProducts(scene *models.SceneMetadata) TermSet {
	s := make(TermSet)
	if scene == nil || scene.Episode == nil {
		return s
	}
	for _, p := range scene.Episode.ProminentProducts {
		s.Add(p.Category)
		s.Add(p.Labels...)
		s.Add(p.Brands...)
	}
	return s
}

// SceneSignals groups every term source the selection rules consult.
type SceneSignals struct {
	Labels    TermSet
	Tags      TermSet
	Dialogue  TermSet
	Episode   TermSet
	Prominent TermSet
	// All is the union of labels, tags, dialogue and episode terms.
	All TermSet
}

// CollectSignals extracts the lowercased term sets from a scene.
func CollectSignals(scene *models.SceneMetadata) SceneSignals {
	sig := SceneSignals{
		Labels:    make(TermSet),
		Tags:      make(TermSet),
		Dialogue:  make(TermSet),
		Episode:   EpisodeTerms(scene),
		Prominent: ProminentProducts(scene),
	}
	if scene != nil {
		for _, obj := range scene.DetectedObjects {
			sig.Labels.Add(obj.Label)
		}
		sig.Tags.Add(scene.SceneTags...)
		sig.Dialogue.Add(scene.DialogueKeywords...)
	}
	sig.All = Union(sig.Labels, sig.Tags, sig.Dialogue, sig.Episode)
	return sig
}
