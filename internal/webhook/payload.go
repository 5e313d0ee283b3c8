package webhook

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/postcraft/postcraft/internal/models"
)

// GenerateRequest is the body sent to the generation webhook
type GenerateRequest struct {
	Topic              string                    `json:"topic"`
	Timestamp          string                    `json:"timestamp"`
	UserName           string                    `json:"user_name"`
	ContentPreferences ContentPreferencesPayload `json:"content_preferences"`
	BrandingSettings   BrandingPayload           `json:"branding_settings"`
}

type ContentPreferencesPayload struct {
	Tone                string `json:"tone"`
	Length              string `json:"length"`
	IncludeHashtags     bool   `json:"include_hashtags"`
	IncludeCallToAction bool   `json:"include_call_to_action"`
	Industry            string `json:"industry"`
	TargetAudience      string `json:"target_audience"`
}

type BrandingPayload struct {
	CompanyName     string `json:"company_name"`
	Website         string `json:"website"`
	LinkedinProfile string `json:"linkedin_profile"`
	BrandVoice      string `json:"brand_voice"`
}

// PublishRequest is the body sent to the publishing webhook
type PublishRequest struct {
	PostContent        string            `json:"post_content"`
	ImageURL           string            `json:"image_url"`
	Timestamp          string            `json:"timestamp"`
	UserName           string            `json:"user_name"`
	BrandingSettings   BrandingPayload   `json:"branding_settings"`
	AutomationSettings AutomationPayload `json:"automation_settings"`
}

type AutomationPayload struct {
	AutoPublish             bool `json:"auto_publish"`
	ScheduledPosting        bool `json:"scheduled_posting"`
	ContentApprovalRequired bool `json:"content_approval_required"`
	MaxPostsPerDay          int  `json:"max_posts_per_day"`
}

// SlackMessage is the body sent to a Slack-style incoming webhook
type SlackMessage struct {
	Text string `json:"text"`
}

// GenerateResponse holds the fields the client needs from the generation webhook
type GenerateResponse struct {
	PostContent string `json:"post_content"`
	ImageURL    string `json:"image_url"`
}

// NewGenerateRequest flattens the resolved settings into the generation payload
func NewGenerateRequest(topic string, s models.ResolvedSettings, timestamp string) GenerateRequest {
	p := s.ContentPreferences
	return GenerateRequest{
		Topic:     topic,
		Timestamp: timestamp,
		UserName:  s.Name,
		ContentPreferences: ContentPreferencesPayload{
			Tone:                string(p.Tone),
			Length:              string(p.Length),
			IncludeHashtags:     p.IncludeHashtags,
			IncludeCallToAction: p.IncludeCallToAction,
			Industry:            p.Industry,
			TargetAudience:      p.TargetAudience,
		},
		BrandingSettings: newBrandingPayload(s.BrandingSettings),
	}
}

// NewPublishRequest flattens the post and resolved settings into the publish payload
func NewPublishRequest(post models.Post, s models.ResolvedSettings, timestamp string) PublishRequest {
	a := s.AutomationSettings
	return PublishRequest{
		PostContent:      post.Content,
		ImageURL:         post.ImageURL,
		Timestamp:        timestamp,
		UserName:         s.Name,
		BrandingSettings: newBrandingPayload(s.BrandingSettings),
		AutomationSettings: AutomationPayload{
			AutoPublish:             a.AutoPublish,
			ScheduledPosting:        a.ScheduledPosting,
			ContentApprovalRequired: a.ContentApprovalRequired,
			MaxPostsPerDay:          a.MaxPostsPerDay,
		},
	}
}

func newBrandingPayload(b models.BrandingSettings) BrandingPayload {
	return BrandingPayload{
		CompanyName:     b.CompanyName,
		Website:         b.Website,
		LinkedinProfile: b.LinkedinProfile,
		BrandVoice:      b.BrandVoice,
	}
}

// ParseGenerateResponse strips control characters, decodes the body and
// checks that both required fields are present. The returned content is
// already normalized.
func ParseGenerateResponse(body []byte) (*GenerateResponse, error) {
	text := StripControlChars(string(body))

	var resp GenerateResponse
	if err := json.Unmarshal([]byte(text), &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	if resp.PostContent == "" || resp.ImageURL == "" {
		return nil, fmt.Errorf("%w: missing required fields", ErrInvalidResponse)
	}

	resp.PostContent = NormalizeContent(resp.PostContent)
	return &resp, nil
}

// StripControlChars removes C0 controls, DEL and C1 controls
func StripControlChars(s string) string {
	return strings.Map(func(r rune) rune {
		if r <= 0x1F || (r >= 0x7F && r <= 0x9F) {
			return -1
		}
		return r
	}, s)
}

var (
	sentenceEnd = regexp.MustCompile(`([.!?])\s+`)
	blankRun    = regexp.MustCompile(`\n\s*\n`)
)

// NormalizeContent puts every sentence in its own paragraph: a blank line
// follows each '.', '!' or '?' that is followed by whitespace, runs of blank
// lines collapse to one, and the result is trimmed. Applying it twice gives
// the same text as applying it once.
func NormalizeContent(s string) string {
	s = sentenceEnd.ReplaceAllString(s, "$1\n\n")
	s = blankRun.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// TruncateTopic shortens topic to at most n characters followed by an ellipsis
func TruncateTopic(topic string, n int) string {
	runes := []rune(topic)
	if len(runes) > n {
		runes = runes[:n]
	}
	return string(runes) + "..."
}
