package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/postcraft/postcraft/internal/app"
	"github.com/postcraft/postcraft/internal/models"
)

const topicColumnWidth = 50

func newPostsCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "posts",
		Short: "Browse and manage your post history",
		Long: `Browse and manage your post history.

Examples:
  postcraft posts list
  postcraft posts open ID
  postcraft posts edit ID --file draft.txt
  postcraft posts delete ID`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := rt.setup(cmd.Context()); err != nil {
				return err
			}
			return rt.requireOnboarding()
		},
	}

	cmd.AddCommand(newPostsListCmd(rt))
	cmd.AddCommand(newPostsShowCmd(rt))
	cmd.AddCommand(newPostsCurrentCmd(rt))
	cmd.AddCommand(newPostsOpenCmd(rt))
	cmd.AddCommand(newPostsEditCmd(rt))
	cmd.AddCommand(newPostsDeleteCmd(rt))

	return cmd
}

func newPostsListCmd(rt *runtime) *cobra.Command {
	var outputJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List posts, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			posts := rt.app.Posts()

			if outputJSON {
				return writeJSON(rt.out, posts)
			}

			if len(posts) == 0 {
				fmt.Fprintln(rt.out, "No posts yet. Generate your first post to see it here.")
				return nil
			}

			current, _ := rt.app.Current()
			fmt.Fprintf(rt.out, "%d posts, %d published\n\n", len(posts), models.PublishedCount(posts))

			w := tabwriter.NewWriter(rt.out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSTATE\tCREATED\tTOPIC")
			for _, p := range posts {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					p.ID,
					p.State(current.ID),
					p.Timestamp.Local().Format("2006-01-02 15:04"),
					truncate(p.Topic, topicColumnWidth),
				)
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&outputJSON, "json", false, "Output posts as JSON")

	return cmd
}

func newPostsShowCmd(rt *runtime) *cobra.Command {
	var outputJSON bool

	cmd := &cobra.Command{
		Use:   "show ID",
		Short: "Show a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			post, ok := rt.app.Post(args[0])
			if !ok {
				return fmt.Errorf("%w: %s", app.ErrPostNotFound, args[0])
			}
			if outputJSON {
				return writeJSON(rt.out, post)
			}
			printPost(rt, post)
			return nil
		},
	}

	cmd.Flags().BoolVar(&outputJSON, "json", false, "Output the post as JSON")

	return cmd
}

func newPostsCurrentCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "current",
		Short: "Show the post open for editing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			post, ok := rt.app.Current()
			if !ok {
				fmt.Fprintln(rt.out, "No post is open for editing.")
				return nil
			}
			printPost(rt, post)
			return nil
		},
	}
}

func newPostsOpenCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "open ID",
		Short: "Open a post from history for editing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			post, err := rt.app.Select(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("%w: %s", err, args[0])
			}
			if post.Published {
				fmt.Fprintln(rt.errOut, "Note: this post has already been published.")
			}
			printPost(rt, post)
			return nil
		},
	}
}

func newPostsEditCmd(rt *runtime) *cobra.Command {
	var (
		content string
		file    string
	)

	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Replace the content of a post",
		Long: `Replace the content of a post. The new text comes from --content or from
--file; use --file - to read it from stdin.

Examples:
  postcraft posts edit ID --content "Shorter version."
  postcraft posts show ID | sed 's/AI/ML/' | postcraft posts edit ID --file -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readContent(rt.in, cmd.Flags().Changed("content"), content, file)
			if err != nil {
				return err
			}

			if _, err := rt.app.UpdateContent(cmd.Context(), args[0], text); err != nil {
				return fmt.Errorf("%w: %s", err, args[0])
			}
			fmt.Fprintln(rt.out, "Post updated.")
			return nil
		},
	}

	cmd.Flags().StringVar(&content, "content", "", "New post content")
	cmd.Flags().StringVar(&file, "file", "", "Read new content from a file, - for stdin")
	cmd.MarkFlagsMutuallyExclusive("content", "file")

	return cmd
}

func readContent(in io.Reader, fromFlag bool, content, file string) (string, error) {
	switch {
	case fromFlag:
		return content, nil
	case file == "-":
		data, err := io.ReadAll(in)
		if err != nil {
			return "", fmt.Errorf("failed to read from stdin: %w", err)
		}
		return strings.TrimRight(string(data), "\n"), nil
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("failed to read file %s: %w", file, err)
		}
		return strings.TrimRight(string(data), "\n"), nil
	default:
		return "", errors.New("one of --content or --file is required")
	}
}

func newPostsDeleteCmd(rt *runtime) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a post from history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, ok := rt.app.Post(args[0]); !ok {
				return fmt.Errorf("%w: %s", app.ErrPostNotFound, args[0])
			}

			if !yes && !confirm(rt.in, rt.out, "Are you sure you want to delete this post? This action cannot be undone.") {
				fmt.Fprintln(rt.out, "Delete cancelled.")
				return nil
			}

			rt.app.Delete(cmd.Context(), args[0])
			fmt.Fprintln(rt.out, "Post deleted.")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Delete without asking for confirmation")

	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
