package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/postcraft/postcraft/internal/models"
)

func newSettingsCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change your settings",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := rt.setup(cmd.Context()); err != nil {
				return err
			}
			return rt.requireOnboarding()
		},
	}

	cmd.AddCommand(newSettingsShowCmd(rt))
	cmd.AddCommand(newSettingsSetCmd(rt))

	return cmd
}

func newSettingsShowCmd(rt *runtime) *cobra.Command {
	var outputJSON bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show your settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _ := rt.app.Settings()
			if outputJSON {
				return writeJSON(rt.out, s)
			}

			r := s.Resolve()
			w := tabwriter.NewWriter(rt.out, 0, 0, 2, ' ', 0)
			rows := [][2]string{
				{"name", r.Name},
				{"generate-webhook", r.GenerateWebhook},
				{"publish-webhook", r.PublishWebhook},
				{"tone", string(r.ContentPreferences.Tone)},
				{"length", string(r.ContentPreferences.Length)},
				{"hashtags", fmt.Sprint(r.ContentPreferences.IncludeHashtags)},
				{"call-to-action", fmt.Sprint(r.ContentPreferences.IncludeCallToAction)},
				{"industry", r.ContentPreferences.Industry},
				{"audience", r.ContentPreferences.TargetAudience},
				{"company", r.BrandingSettings.CompanyName},
				{"website", r.BrandingSettings.Website},
				{"linkedin", r.BrandingSettings.LinkedinProfile},
				{"brand-voice", r.BrandingSettings.BrandVoice},
				{"auto-publish", fmt.Sprint(r.AutomationSettings.AutoPublish)},
				{"scheduled-posting", fmt.Sprint(r.AutomationSettings.ScheduledPosting)},
				{"approval-required", fmt.Sprint(r.AutomationSettings.ContentApprovalRequired)},
				{"max-posts-per-day", fmt.Sprint(r.AutomationSettings.MaxPostsPerDay)},
				{"slack-webhook", r.IntegrationSettings.SlackWebhook},
				{"email-notifications", fmt.Sprint(r.IntegrationSettings.EmailNotifications)},
				{"analytics", fmt.Sprint(r.IntegrationSettings.AnalyticsTracking)},
			}
			for _, row := range rows {
				fmt.Fprintf(w, "%s\t%s\n", row[0], row[1])
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&outputJSON, "json", false, "Output settings as JSON")

	return cmd
}

// registerSettingsFlags binds one flag per editable setting to s
func registerSettingsFlags(fs *pflag.FlagSet, s *models.ResolvedSettings) {
	fs.StringVar(&s.Name, "name", s.Name, "Your name")
	fs.StringVar(&s.GenerateWebhook, "generate-webhook", s.GenerateWebhook, "Content generation webhook URL")
	fs.StringVar(&s.PublishWebhook, "publish-webhook", s.PublishWebhook, "Publishing webhook URL")

	p := &s.ContentPreferences
	fs.StringVar((*string)(&p.Tone), "tone", string(p.Tone), "Tone: professional, casual, thought-leader, storytelling or data-driven")
	fs.StringVar((*string)(&p.Length), "length", string(p.Length), "Length: short, medium or long")
	fs.BoolVar(&p.IncludeHashtags, "hashtags", p.IncludeHashtags, "Include hashtags")
	fs.BoolVar(&p.IncludeCallToAction, "call-to-action", p.IncludeCallToAction, "Include a call to action")
	fs.StringVar(&p.Industry, "industry", p.Industry, "Industry")
	fs.StringVar(&p.TargetAudience, "audience", p.TargetAudience, "Target audience")

	b := &s.BrandingSettings
	fs.StringVar(&b.CompanyName, "company", b.CompanyName, "Company name")
	fs.StringVar(&b.Website, "website", b.Website, "Company website")
	fs.StringVar(&b.LinkedinProfile, "linkedin", b.LinkedinProfile, "LinkedIn profile URL")
	fs.StringVar(&b.BrandVoice, "brand-voice", b.BrandVoice, "Brand voice description")

	a := &s.AutomationSettings
	fs.BoolVar(&a.AutoPublish, "auto-publish", a.AutoPublish, "Let the publishing service publish automatically")
	fs.BoolVar(&a.ScheduledPosting, "scheduled-posting", a.ScheduledPosting, "Let the publishing service schedule posts")
	fs.BoolVar(&a.ContentApprovalRequired, "approval-required", a.ContentApprovalRequired, "Require content approval")
	fs.IntVar(&a.MaxPostsPerDay, "max-posts-per-day", a.MaxPostsPerDay, "Maximum posts per day")

	i := &s.IntegrationSettings
	fs.StringVar(&i.SlackWebhook, "slack-webhook", i.SlackWebhook, "Slack incoming webhook notified after publishing")
	fs.BoolVar(&i.EmailNotifications, "email-notifications", i.EmailNotifications, "Email notifications")
	fs.BoolVar(&i.AnalyticsTracking, "analytics", i.AnalyticsTracking, "Analytics tracking")
}

// applyChanged replays the changed flags of from onto base
func applyChanged(from *pflag.FlagSet, base models.ResolvedSettings) (models.ResolvedSettings, int, error) {
	target := pflag.NewFlagSet("settings", pflag.ContinueOnError)
	registerSettingsFlags(target, &base)

	var (
		changed int
		setErr  error
	)
	from.Visit(func(fl *pflag.Flag) {
		if target.Lookup(fl.Name) == nil {
			return
		}
		changed++
		if err := target.Set(fl.Name, fl.Value.String()); err != nil && setErr == nil {
			setErr = fmt.Errorf("invalid value for --%s: %w", fl.Name, err)
		}
	})

	return base, changed, setErr
}

func newSettingsSetCmd(rt *runtime) *cobra.Command {
	defaults := models.UserSettings{}.Resolve()

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change settings",
		Long: `Change settings. Only the flags you pass are changed; everything else keeps
its current value.

Examples:
  postcraft settings set --tone casual --length short
  postcraft settings set --hashtags=false --slack-webhook https://hooks.slack.com/services/...
  postcraft settings set --generate-webhook https://hook.example.com/generate`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			current, _ := rt.app.Settings()
			updated, changed, err := applyChanged(cmd.Flags(), current.Resolve())
			if err != nil {
				return err
			}
			if changed == 0 {
				return fmt.Errorf("no settings given; see postcraft settings set --help")
			}

			if err := rt.app.SaveSettings(cmd.Context(), updated.Unresolve()); err != nil {
				return err
			}
			fmt.Fprintln(rt.out, "Settings saved.")
			return nil
		},
	}

	registerSettingsFlags(cmd.Flags(), &defaults)

	return cmd
}
