package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/postcraft/postcraft/internal/models"
	"github.com/postcraft/postcraft/internal/voice"
)

func newGenerateCmd(rt *runtime) *cobra.Command {
	var (
		useVoice    bool
		voiceSource string
		language    string
	)

	cmd := &cobra.Command{
		Use:   "generate [topic...]",
		Short: "Generate a post about a topic",
		Long: `Send a topic to the generation webhook. The generated post becomes the post
open for editing and is added to the top of your history.

With --voice the topic is dictated: finalized phrases are read from a
transcript stream (stdin by default) and appended to any typed topic. Each line
of the stream is a finalized phrase; lines starting with "~" are interim
results and lines starting with "!" report a recognition error.

Examples:
  postcraft generate AI in hiring
  speech-to-text --stream | postcraft generate --voice
  postcraft generate "Remote work:" --voice --voice-source /tmp/transcript.txt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rt.requireOnboarding(); err != nil {
				return err
			}

			topic := strings.TrimSpace(strings.Join(args, " "))
			if useVoice {
				topic = rt.dictate(cmd.Context(), topic, voiceSource, language)
			}

			post, err := rt.app.Generate(cmd.Context(), topic)
			if err != nil {
				return notified(err)
			}

			printPost(rt, post)
			fmt.Fprintf(rt.out, "\nEdit with: postcraft posts edit %s --file draft.txt\nPublish with: postcraft publish\n", post.ID)
			return nil
		},
	}

	cmd.Flags().BoolVar(&useVoice, "voice", false, "Dictate the topic from a transcript stream")
	cmd.Flags().StringVar(&voiceSource, "voice-source", "-", "Transcript stream to read; - for stdin")
	cmd.Flags().StringVar(&language, "language", "en-US", "Recognition language passed to the recognizer")

	return cmd
}

// dictate appends a voice transcript to topic. Capture errors are shown and
// leave the typed topic unchanged.
func (rt *runtime) dictate(ctx context.Context, topic, source, language string) string {
	rec := voice.NewLineRecognizer(source)
	if source == "-" {
		rec = voice.NewReaderRecognizer(rt.in)
	}

	capture := voice.NewCapture(
		rec,
		voice.FileMicrophone{Path: source},
		voice.WithLanguage(language),
		voice.WithLogger(rt.logger),
		voice.WithLiveTranscript(func(live string) {
			fmt.Fprintf(rt.errOut, "\r🎤 %s", live)
		}),
	)
	if !capture.Supported() {
		fmt.Fprintln(rt.errOut, voice.Message(voice.ErrUnavailable))
		return topic
	}

	fmt.Fprintln(rt.errOut, "🎤 Listening... end the stream to stop.")
	transcript, err := capture.Run(ctx)
	fmt.Fprintln(rt.errOut)
	if err != nil {
		fmt.Fprintln(rt.errOut, voice.Message(err))
		return topic
	}

	return voice.AppendTranscript(topic, transcript)
}

func printPost(rt *runtime, post models.Post) {
	current, _ := rt.app.Current()

	fmt.Fprintf(rt.out, "ID:      %s\n", post.ID)
	fmt.Fprintf(rt.out, "Topic:   %s\n", post.Topic)
	fmt.Fprintf(rt.out, "Created: %s\n", post.Timestamp.Local().Format("2006-01-02 15:04"))
	fmt.Fprintf(rt.out, "State:   %s\n", post.State(current.ID))
	if post.ImageURL != "" {
		fmt.Fprintf(rt.out, "Image:   %s\n", post.ImageURL)
	}
	fmt.Fprintf(rt.out, "\n%s\n", post.Content)
}
