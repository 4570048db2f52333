package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/patrickwarner/seamlessads/internal/models"
	"github.com/patrickwarner/seamlessads/internal/personas"
)

// NewRecommendCmd creates the 'recommend' command.
func NewRecommendCmd(env Env) *cobra.Command {
	var userKey string

	cmd := &cobra.Command{
		Use:   "recommend SCENE_JSON [USER_JSON]",
		Short: "Generate an ad recommendation for a scene",
		Long:  `Reads scene metadata and a user profile (or a persona key) and prints the ad response as JSON.`,
		Example: `  seamless recommend scene.json user.json
  seamless recommend scene.json --user-key A`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var user models.UserProfile
			switch {
			case userKey != "":
				p, err := personas.Get(userKey)
				if err != nil {
					return err
				}
				user = p
			case len(args) == 2:
				if err := readJSON(args[1], &user); err != nil {
					return err
				}
			default:
				return errors.New("provide a user JSON path or --user-key")
			}

			var scene models.SceneMetadata
			if err := readJSON(args[0], &scene); err != nil {
				return err
			}

			a, err := env.OpenApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			resp, err := a.Ads.GenerateAdResponse(cmd.Context(), user, scene)
			if err != nil {
				return err
			}
			return writeIndented(cmd.OutOrStdout(), resp)
		},
	}

	cmd.Flags().StringVarP(&userKey, "user-key", "u", "", "Use a predefined user persona key (A or B)")
	return cmd
}
