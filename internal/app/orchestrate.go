package app

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"

	"go.uber.org/zap"

	"github.com/postcraft/postcraft/internal/models"
	"github.com/postcraft/postcraft/internal/storage"
)

const (
	msgGenerateFailed  = "Failed to generate post. Please try again."
	msgPublishFailed   = "Failed to publish post. Please try again."
	msgPublishSucceded = "Post published successfully!"
)

// Generate asks the generation webhook for a post about topic. On success
// the new post becomes current and is prepended to history. On failure
// nothing changes and a single error notification is shown. An empty topic
// is rejected without a notification.
func (a *App) Generate(ctx context.Context, topic string) (models.Post, error) {
	if strings.TrimSpace(topic) == "" {
		return models.Post{}, ErrEmptyTopic
	}

	if !a.generating.CompareAndSwap(false, true) {
		return models.Post{}, ErrBusy
	}
	defer a.generating.Store(false)

	s, err := a.resolvedSettings()
	if err == nil {
		err = s.ForGenerate()
	}
	if err != nil {
		a.notifier.Error(fmt.Sprintf("Cannot generate post: %v", err))
		return models.Post{}, err
	}

	resp, err := a.gen.Generate(ctx, topic, s)
	if err != nil {
		a.logger.Error("error generating post", zap.Error(err))
		a.notifier.Error(msgGenerateFailed)
		return models.Post{}, fmt.Errorf("failed to generate post: %w", err)
	}

	post := models.Post{
		ID:        a.newID(),
		Topic:     topic,
		Content:   resp.PostContent,
		ImageURL:  resp.ImageURL,
		Published: false,
		Timestamp: a.now(),
	}

	a.mu.Lock()
	a.posts = append([]models.Post{post}, a.posts...)
	a.store.Write(ctx, storage.KeyPosts, a.posts)
	a.setCurrentLocked(ctx, post.ID)
	a.mu.Unlock()

	a.logger.Info("post generated", zap.String("id", post.ID))
	return post, nil
}

// Publish sends the post with the given id to the publishing webhook. On
// success the post is marked published, the current pointer is cleared if
// it referenced the post, and the post-publish hooks run. On failure the
// post is left untouched. A post with blank content is rejected without a
// notification.
func (a *App) Publish(ctx context.Context, id string) (models.Post, error) {
	if !a.publishing.CompareAndSwap(false, true) {
		return models.Post{}, ErrBusy
	}
	defer a.publishing.Store(false)

	s, err := a.resolvedSettings()
	if err == nil {
		err = s.ForPublish()
	}
	if err != nil {
		a.notifier.Error(fmt.Sprintf("Cannot publish post: %v", err))
		return models.Post{}, err
	}

	post, ok := a.Post(id)
	if !ok {
		a.notifier.Error(msgPublishFailed)
		return models.Post{}, ErrPostNotFound
	}
	if strings.TrimSpace(post.Content) == "" {
		return models.Post{}, ErrEmptyContent
	}
	if post.Published {
		a.logger.Warn("publishing a post that was already published", zap.String("id", id))
	}

	if err := a.pub.Publish(ctx, post, s); err != nil {
		a.logger.Error("error publishing post", zap.String("id", id), zap.Error(err))
		a.notifier.Error(msgPublishFailed)
		return models.Post{}, fmt.Errorf("failed to publish post: %w", err)
	}

	a.mu.Lock()
	if i := models.FindPost(a.posts, id); i >= 0 {
		a.posts[i].Published = true
		post = a.posts[i]
		a.store.Write(ctx, storage.KeyPosts, a.posts)
	} else {
		post.Published = true
	}
	if a.currentID == id {
		a.setCurrentLocked(ctx, "")
	}
	a.mu.Unlock()

	a.notifier.Success(msgPublishSucceded)
	a.runHooks(ctx, post, s)

	return post, nil
}

// PublishCurrent publishes the post open for editing
func (a *App) PublishCurrent(ctx context.Context) (models.Post, error) {
	current, ok := a.Current()
	if !ok {
		return models.Post{}, ErrNoCurrentPost
	}
	return a.Publish(ctx, current.ID)
}

// runHooks runs every post-publish hook. A failing or panicking hook is
// logged and does not affect the others.
func (a *App) runHooks(ctx context.Context, post models.Post, s models.ResolvedSettings) {
	for _, hook := range a.hooks {
		func() {
			defer func() {
				if r := recover(); r != nil {
					a.logger.Error("post-publish hook panic recovered",
						zap.String("hook", hook.Name()),
						zap.Any("panic", r),
						zap.ByteString("stack", debug.Stack()))
				}
			}()

			if err := hook.AfterPublish(ctx, post, s); err != nil {
				a.logger.Warn("post-publish hook failed", zap.String("hook", hook.Name()), zap.Error(err))
			}
		}()
	}
}
