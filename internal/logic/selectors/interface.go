// Package selectors chooses the product archetype advertised for a scene.
// Selection walks an ordered rule table and the first matching rule wins.
package selectors

import (
	logic "github.com/patrickwarner/seamlessads/internal/logic"
	"github.com/patrickwarner/seamlessads/internal/models"
)

// Selector defines a pluggable interface for product archetype selection.
type Selector interface {
	SelectProduct(user *models.UserProfile, scene *models.SceneMetadata, attrs models.AdAttributes) (string, []string)
	SelectProductWithTrace(user *models.UserProfile, scene *models.SceneMetadata, attrs models.AdAttributes, trace *logic.SelectionTrace) (string, []string)
}
