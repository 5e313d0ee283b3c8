package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUserSettings_Defaults(t *testing.T) {
	s := NewUserSettings("  Ada  ", DefaultGenerateWebhook, DefaultPublishWebhook)

	assert.Equal(t, "Ada", s.Name)
	require.NotNil(t, s.ContentPreferences)
	assert.Equal(t, ToneProfessional, s.ContentPreferences.Tone)
	assert.Equal(t, LengthMedium, s.ContentPreferences.Length)
	assert.True(t, s.ContentPreferences.IncludeHashtags)
	assert.True(t, s.ContentPreferences.IncludeCallToAction)
	require.NotNil(t, s.AutomationSettings)
	assert.True(t, s.AutomationSettings.ContentApprovalRequired)
	assert.Equal(t, 3, s.AutomationSettings.MaxPostsPerDay)
	require.NotNil(t, s.IntegrationSettings)
	assert.True(t, s.IntegrationSettings.EmailNotifications)
	assert.Empty(t, s.IntegrationSettings.SlackWebhook)
}

func TestResolve_MissingGroups(t *testing.T) {
	var s UserSettings
	require.NoError(t, json.Unmarshal([]byte(`{"name":"Ada","generateWebhook":"http://gen"}`), &s))

	r := s.Resolve()

	assert.Equal(t, DefaultContentPreferences(), r.ContentPreferences)
	assert.Equal(t, BrandingSettings{}, r.BrandingSettings)
	assert.Equal(t, DefaultAutomationSettings(), r.AutomationSettings)
	assert.NoError(t, r.ForGenerate())
	assert.ErrorIs(t, r.ForPublish(), ErrMissingWebhook)
}

func TestResolve_MissingFields(t *testing.T) {
	var s UserSettings
	require.NoError(t, json.Unmarshal([]byte(`{
		"name": "Ada",
		"contentPreferences": {"industry": "fintech"},
		"automationSettings": {"autoPublish": true}
	}`), &s))

	r := s.Resolve()

	assert.Equal(t, ToneProfessional, r.ContentPreferences.Tone)
	assert.Equal(t, LengthMedium, r.ContentPreferences.Length)
	assert.Equal(t, "fintech", r.ContentPreferences.Industry)
	assert.True(t, r.ContentPreferences.IncludeHashtags)
	assert.True(t, r.ContentPreferences.IncludeCallToAction)
	assert.True(t, r.AutomationSettings.AutoPublish)
	assert.True(t, r.AutomationSettings.ContentApprovalRequired)
	assert.Equal(t, 3, r.AutomationSettings.MaxPostsPerDay)
}

func TestResolve_PartialGroupsKeepExplicitValues(t *testing.T) {
	tests := []struct {
		name         string
		raw          string
		wantHashtags bool
		wantCTA      bool
		wantApproval bool
		wantMax      int
	}{
		{
			name:         "absent bools default to true",
			raw:          `{"contentPreferences":{"tone":"casual"},"automationSettings":{"autoPublish":true}}`,
			wantHashtags: true,
			wantCTA:      true,
			wantApproval: true,
			wantMax:      3,
		},
		{
			name:         "explicit false is kept",
			raw:          `{"contentPreferences":{"includeHashtags":false,"includeCallToAction":false},"automationSettings":{"contentApprovalRequired":false,"maxPostsPerDay":5}}`,
			wantHashtags: false,
			wantCTA:      false,
			wantApproval: false,
			wantMax:      5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s UserSettings
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &s))

			r := s.Resolve()

			assert.Equal(t, tt.wantHashtags, r.ContentPreferences.IncludeHashtags)
			assert.Equal(t, tt.wantCTA, r.ContentPreferences.IncludeCallToAction)
			assert.Equal(t, tt.wantApproval, r.AutomationSettings.ContentApprovalRequired)
			assert.Equal(t, tt.wantMax, r.AutomationSettings.MaxPostsPerDay)
		})
	}
}

func TestSettings_JSONRoundTripKeepsFalse(t *testing.T) {
	s := NewUserSettings("Ada", DefaultGenerateWebhook, DefaultPublishWebhook)
	s.ContentPreferences.IncludeHashtags = false
	s.AutomationSettings.ContentApprovalRequired = false

	data, err := json.Marshal(s)
	require.NoError(t, err)
	var got UserSettings
	require.NoError(t, json.Unmarshal(data, &got))

	assert.Equal(t, s, got)
}

func TestResolvedSettings_Webhooks(t *testing.T) {
	tests := []struct {
		name    string
		webhook string
		wantErr error
	}{
		{"valid https", "https://hook.example.com/abc", nil},
		{"valid http", "http://localhost:8080/hook", nil},
		{"empty", "", ErrMissingWebhook},
		{"no scheme", "hook.example.com", ErrInvalidWebhook},
		{"ftp", "ftp://example.com", ErrInvalidWebhook},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := ResolvedSettings{Name: "Ada", GenerateWebhook: tt.webhook, PublishWebhook: tt.webhook}
			if tt.wantErr == nil {
				assert.NoError(t, r.ForGenerate())
				assert.NoError(t, r.ForPublish())
				return
			}
			assert.ErrorIs(t, r.ForGenerate(), tt.wantErr)
			assert.ErrorIs(t, r.ForPublish(), tt.wantErr)
		})
	}
}

func TestResolvedSettings_MissingName(t *testing.T) {
	r := ResolvedSettings{GenerateWebhook: "https://x.test", PublishWebhook: "https://x.test"}
	assert.ErrorIs(t, r.ForGenerate(), ErrMissingName)
	assert.ErrorIs(t, r.ForPublish(), ErrMissingName)
}

func TestValidate(t *testing.T) {
	s := NewUserSettings("Ada", DefaultGenerateWebhook, DefaultPublishWebhook)
	assert.NoError(t, s.Validate())

	s.ContentPreferences.Tone = "sarcastic"
	assert.ErrorIs(t, s.Validate(), ErrInvalidTone)

	s.ContentPreferences.Tone = ToneCasual
	s.ContentPreferences.Length = "epic"
	assert.ErrorIs(t, s.Validate(), ErrInvalidLength)

	assert.ErrorIs(t, UserSettings{}.Validate(), ErrMissingName)
}

func TestNormalize(t *testing.T) {
	s := UserSettings{
		Name:                " Ada ",
		GenerateWebhook:     " https://gen ",
		PublishWebhook:      "https://pub\n",
		IntegrationSettings: &IntegrationSettings{SlackWebhook: " https://slack "},
	}

	n := s.Normalize()

	assert.Equal(t, "Ada", n.Name)
	assert.Equal(t, "https://gen", n.GenerateWebhook)
	assert.Equal(t, "https://pub", n.PublishWebhook)
	assert.Equal(t, "https://slack", n.IntegrationSettings.SlackWebhook)
	assert.Equal(t, " https://slack ", s.IntegrationSettings.SlackWebhook)
}

func TestClone(t *testing.T) {
	s := NewUserSettings("Ada", "", "")
	c := s.Clone()
	assert.Equal(t, s, c)

	c.ContentPreferences.Tone = ToneCasual
	c.IntegrationSettings.SlackWebhook = "https://slack"
	assert.Equal(t, ToneProfessional, s.ContentPreferences.Tone)
	assert.Empty(t, s.IntegrationSettings.SlackWebhook)

	assert.Nil(t, UserSettings{Name: "Ada"}.Clone().BrandingSettings)
}

func TestUnresolve_RoundTrip(t *testing.T) {
	s := NewUserSettings("Ada", DefaultGenerateWebhook, DefaultPublishWebhook)
	s.BrandingSettings.CompanyName = "Acme"

	assert.Equal(t, s, s.Resolve().Unresolve())
}

func TestPost_State(t *testing.T) {
	p := Post{ID: "a"}
	assert.Equal(t, StateDraftInEdit, p.State("a"))
	assert.Equal(t, StateUnpublished, p.State("b"))

	p.Published = true
	assert.Equal(t, StatePublished, p.State("a"))
}

func TestFindPost(t *testing.T) {
	posts := []Post{{ID: "a"}, {ID: "b", Published: true}}
	assert.Equal(t, 1, FindPost(posts, "b"))
	assert.Equal(t, -1, FindPost(posts, "zzz"))
	assert.Equal(t, 1, PublishedCount(posts))
}
