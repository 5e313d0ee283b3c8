package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newOnboardCmd(rt *runtime) *cobra.Command {
	var (
		name            string
		generateWebhook string
		publishWebhook  string
	)

	cmd := &cobra.Command{
		Use:   "onboard",
		Short: "Create your settings on first run",
		Long: `Create your user settings. Onboarding runs once; use "postcraft settings set"
to change anything afterwards.

Examples:
  postcraft onboard --name "Ada Lovelace"

  # Point at your own webhooks
  postcraft onboard --name "Ada" \
    --generate-webhook https://hook.example.com/generate \
    --publish-webhook https://hook.example.com/publish`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := rt.app.Onboard(cmd.Context(), name, generateWebhook, publishWebhook)
			if err != nil {
				return err
			}
			fmt.Fprintf(rt.out, "Welcome, %s! Generate your first post with: postcraft generate \"your topic\"\n", s.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Your name (required)")
	cmd.Flags().StringVar(&generateWebhook, "generate-webhook", rt.cfg.Onboarding.GenerateWebhook, "Content generation webhook URL")
	cmd.Flags().StringVar(&publishWebhook, "publish-webhook", rt.cfg.Onboarding.PublishWebhook, "Publishing webhook URL")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}
