package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Default webhook destinations written by onboarding
const (
	DefaultGenerateWebhook = "https://hook.us1.make.com/rhwob8qgtu9ia7t1q7y3o6dfma7b3qc8"
	DefaultPublishWebhook  = "https://hook.us1.make.com/dpx1jdi9aqkku5xu9mnv6jq0pyfbi3yw"
)

var (
	ErrMissingName    = errors.New("user name is not set")
	ErrMissingWebhook = errors.New("webhook URL is not set")
	ErrInvalidWebhook = errors.New("webhook URL is not a valid http(s) URL")
	ErrInvalidTone    = errors.New("unknown tone")
	ErrInvalidLength  = errors.New("unknown length")
)

// Tone of the generated content
type Tone string

const (
	ToneProfessional  Tone = "professional"
	ToneCasual        Tone = "casual"
	ToneThoughtLeader Tone = "thought-leader"
	ToneStorytelling  Tone = "storytelling"
	ToneDataDriven    Tone = "data-driven"
)

// Tones lists every accepted tone
var Tones = []Tone{ToneProfessional, ToneCasual, ToneThoughtLeader, ToneStorytelling, ToneDataDriven}

// Length of the generated content
type Length string

const (
	LengthShort  Length = "short"
	LengthMedium Length = "medium"
	LengthLong   Length = "long"
)

// Lengths lists every accepted length
var Lengths = []Length{LengthShort, LengthMedium, LengthLong}

// UserSettings holds the user's profile, webhook destinations and preferences.
// Preference groups are pointers so that records written without them still
// load; Resolve fills in the defaults.
type UserSettings struct {
	Name                string               `json:"name"`
	GenerateWebhook     string               `json:"generateWebhook"`
	PublishWebhook      string               `json:"publishWebhook"`
	ContentPreferences  *ContentPreferences  `json:"contentPreferences,omitempty"`
	BrandingSettings    *BrandingSettings    `json:"brandingSettings,omitempty"`
	AutomationSettings  *AutomationSettings  `json:"automationSettings,omitempty"`
	IntegrationSettings *IntegrationSettings `json:"integrationSettings,omitempty"`
}

// ContentPreferences shape what the generation service writes
type ContentPreferences struct {
	Tone                Tone   `json:"tone"`
	Length              Length `json:"length"`
	IncludeHashtags     bool   `json:"includeHashtags"`
	IncludeCallToAction bool   `json:"includeCallToAction"`
	Industry            string `json:"industry"`
	TargetAudience      string `json:"targetAudience"`
}

// BrandingSettings are free-text branding hints
type BrandingSettings struct {
	CompanyName     string `json:"companyName"`
	Website         string `json:"website"`
	LinkedinProfile string `json:"linkedinProfile"`
	BrandVoice      string `json:"brandVoice"`
}

// AutomationSettings are forwarded to the publishing service, which decides
// what to do with them. Nothing here is enforced locally.
type AutomationSettings struct {
	AutoPublish             bool `json:"autoPublish"`
	ScheduledPosting        bool `json:"scheduledPosting"`
	ContentApprovalRequired bool `json:"contentApprovalRequired"`
	MaxPostsPerDay          int  `json:"maxPostsPerDay"`
}

// IntegrationSettings configure optional side channels
type IntegrationSettings struct {
	SlackWebhook       string `json:"slackWebhook"`
	EmailNotifications bool   `json:"emailNotifications"`
	AnalyticsTracking  bool   `json:"analyticsTracking"`
}

// DefaultContentPreferences returns the onboarding content preferences
func DefaultContentPreferences() ContentPreferences {
	return ContentPreferences{
		Tone:                ToneProfessional,
		Length:              LengthMedium,
		IncludeHashtags:     true,
		IncludeCallToAction: true,
	}
}

// DefaultAutomationSettings returns the onboarding automation settings
func DefaultAutomationSettings() AutomationSettings {
	return AutomationSettings{
		ContentApprovalRequired: true,
		MaxPostsPerDay:          3,
	}
}

// UnmarshalJSON decodes over the defaults so absent keys keep them
func (p *ContentPreferences) UnmarshalJSON(data []byte) error {
	type plain ContentPreferences
	v := plain(DefaultContentPreferences())
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*p = ContentPreferences(v)
	return nil
}

// UnmarshalJSON decodes over the defaults so absent keys keep them
func (a *AutomationSettings) UnmarshalJSON(data []byte) error {
	type plain AutomationSettings
	v := plain(DefaultAutomationSettings())
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*a = AutomationSettings(v)
	return nil
}

// DefaultIntegrationSettings returns the onboarding integration settings
func DefaultIntegrationSettings() IntegrationSettings {
	return IntegrationSettings{
		EmailNotifications: true,
		AnalyticsTracking:  true,
	}
}

// NewUserSettings builds the settings created by onboarding
func NewUserSettings(name, generateWebhook, publishWebhook string) UserSettings {
	content := DefaultContentPreferences()
	branding := BrandingSettings{}
	automation := DefaultAutomationSettings()
	integration := DefaultIntegrationSettings()

	return UserSettings{
		Name:                strings.TrimSpace(name),
		GenerateWebhook:     strings.TrimSpace(generateWebhook),
		PublishWebhook:      strings.TrimSpace(publishWebhook),
		ContentPreferences:  &content,
		BrandingSettings:    &branding,
		AutomationSettings:  &automation,
		IntegrationSettings: &integration,
	}
}

// Clone returns a copy that shares no groups with s
func (s UserSettings) Clone() UserSettings {
	if p := s.ContentPreferences; p != nil {
		c := *p
		s.ContentPreferences = &c
	}
	if p := s.BrandingSettings; p != nil {
		c := *p
		s.BrandingSettings = &c
	}
	if p := s.AutomationSettings; p != nil {
		c := *p
		s.AutomationSettings = &c
	}
	if p := s.IntegrationSettings; p != nil {
		c := *p
		s.IntegrationSettings = &c
	}
	return s
}

// Normalize trims the fields the settings panel trims on save
func (s UserSettings) Normalize() UserSettings {
	s.Name = strings.TrimSpace(s.Name)
	s.GenerateWebhook = strings.TrimSpace(s.GenerateWebhook)
	s.PublishWebhook = strings.TrimSpace(s.PublishWebhook)
	if s.IntegrationSettings != nil {
		integration := *s.IntegrationSettings
		integration.SlackWebhook = strings.TrimSpace(integration.SlackWebhook)
		s.IntegrationSettings = &integration
	}
	return s
}

// Validate checks the values the settings panel accepts
func (s UserSettings) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return ErrMissingName
	}
	if p := s.ContentPreferences; p != nil {
		if p.Tone != "" && !validTone(p.Tone) {
			return fmt.Errorf("%w: %q", ErrInvalidTone, p.Tone)
		}
		if p.Length != "" && !validLength(p.Length) {
			return fmt.Errorf("%w: %q", ErrInvalidLength, p.Length)
		}
	}
	if p := s.AutomationSettings; p != nil && p.MaxPostsPerDay < 0 {
		return errors.New("max posts per day cannot be negative")
	}
	return nil
}

// ResolvedSettings is a fully populated copy of UserSettings. Every group is
// present and every defaultable field carries its default.
type ResolvedSettings struct {
	Name                string
	GenerateWebhook     string
	PublishWebhook      string
	ContentPreferences  ContentPreferences
	BrandingSettings    BrandingSettings
	AutomationSettings  AutomationSettings
	IntegrationSettings IntegrationSettings
}

// Resolve fills in defaults for missing groups and fields
func (s UserSettings) Resolve() ResolvedSettings {
	r := ResolvedSettings{
		Name:                s.Name,
		GenerateWebhook:     strings.TrimSpace(s.GenerateWebhook),
		PublishWebhook:      strings.TrimSpace(s.PublishWebhook),
		ContentPreferences:  DefaultContentPreferences(),
		AutomationSettings:  DefaultAutomationSettings(),
		IntegrationSettings: DefaultIntegrationSettings(),
	}

	if p := s.ContentPreferences; p != nil {
		r.ContentPreferences = *p
		if r.ContentPreferences.Tone == "" {
			r.ContentPreferences.Tone = ToneProfessional
		}
		if r.ContentPreferences.Length == "" {
			r.ContentPreferences.Length = LengthMedium
		}
	}
	if s.BrandingSettings != nil {
		r.BrandingSettings = *s.BrandingSettings
	}
	if p := s.AutomationSettings; p != nil {
		r.AutomationSettings = *p
		if r.AutomationSettings.MaxPostsPerDay == 0 {
			r.AutomationSettings.MaxPostsPerDay = 3
		}
	}
	if s.IntegrationSettings != nil {
		r.IntegrationSettings = *s.IntegrationSettings
	}

	return r
}

// ForGenerate validates what the generation call needs
func (r ResolvedSettings) ForGenerate() error {
	if strings.TrimSpace(r.Name) == "" {
		return ErrMissingName
	}
	return checkWebhook("generate", r.GenerateWebhook)
}

// ForPublish validates what the publish call needs
func (r ResolvedSettings) ForPublish() error {
	if strings.TrimSpace(r.Name) == "" {
		return ErrMissingName
	}
	return checkWebhook("publish", r.PublishWebhook)
}

// Unresolve converts resolved settings back into the persisted shape
func (r ResolvedSettings) Unresolve() UserSettings {
	content := r.ContentPreferences
	branding := r.BrandingSettings
	automation := r.AutomationSettings
	integration := r.IntegrationSettings

	return UserSettings{
		Name:                r.Name,
		GenerateWebhook:     r.GenerateWebhook,
		PublishWebhook:      r.PublishWebhook,
		ContentPreferences:  &content,
		BrandingSettings:    &branding,
		AutomationSettings:  &automation,
		IntegrationSettings: &integration,
	}
}

func checkWebhook(kind, raw string) error {
	if raw == "" {
		return fmt.Errorf("%s %w", kind, ErrMissingWebhook)
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%s %w: %q", kind, ErrInvalidWebhook, raw)
	}
	return nil
}

func validTone(t Tone) bool {
	for _, v := range Tones {
		if v == t {
			return true
		}
	}
	return false
}

func validLength(l Length) bool {
	for _, v := range Lengths {
		if v == l {
			return true
		}
	}
	return false
}
