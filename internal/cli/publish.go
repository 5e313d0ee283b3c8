package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/postcraft/postcraft/internal/app"
	"github.com/postcraft/postcraft/internal/models"
)

func newPublishCmd(rt *runtime) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "publish [id]",
		Short: "Publish the current post or a post from history",
		Long: `Send a post to the publishing webhook. Without an id the post open for
editing is published. Published posts are marked in history; a Slack webhook
configured in your settings is notified afterwards.

Examples:
  postcraft publish
  postcraft publish 3f0c9a4e-... --yes`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rt.requireOnboarding(); err != nil {
				return err
			}

			post, err := rt.publishTarget(args)
			if err != nil {
				return err
			}

			if !yes {
				fmt.Fprintf(rt.out, "%s\n\n", post.Content)
				question := "Publish this post to LinkedIn?"
				if post.Published {
					question = "This post was already published. Publish it again?"
				}
				if !confirm(rt.in, rt.out, question) {
					fmt.Fprintln(rt.out, "Publish cancelled.")
					return nil
				}
			}

			if _, err := rt.app.Publish(cmd.Context(), post.ID); err != nil {
				return notified(err)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Publish without asking for confirmation")

	return cmd
}

func (rt *runtime) publishTarget(args []string) (models.Post, error) {
	if len(args) == 1 {
		post, ok := rt.app.Post(args[0])
		if !ok {
			return models.Post{}, fmt.Errorf("%w: %s", app.ErrPostNotFound, args[0])
		}
		return post, nil
	}

	post, ok := rt.app.Current()
	if !ok {
		return models.Post{}, fmt.Errorf("%w; generate one or open one with: postcraft posts open ID", app.ErrNoCurrentPost)
	}
	return post, nil
}
