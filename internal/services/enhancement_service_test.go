package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/raakesh-m/autosendr-backend/internal/models"
)

func TestApplyTemplateSubstitutesContactFields(t *testing.T) {
	svc := NewEnhancementService(nil)

	contact := models.CampaignContact{
		Email:         "jane@acme.com",
		Name:          "Jane",
		Company:       "Acme",
		Role:          "Backend Engineer",
		RecruiterName: "Sam",
	}

	subject, body := svc.ApplyTemplate(
		"Application for {{role}} at {{company}}",
		"Hi {{recruiter}},\nI would love to join {{company}} as a {{role}}.",
		contact,
	)

	assert.Equal(t, "Application for Backend Engineer at Acme", subject)
	assert.Equal(t, "Hi Sam,\nI would love to join Acme as a Backend Engineer.", body)
}

func TestApplyTemplateRecruiterFallsBackToName(t *testing.T) {
	svc := NewEnhancementService(nil)

	_, body := svc.ApplyTemplate("s", "Hi {{recruiter}}", models.CampaignContact{Email: "j@a.com", Name: "Jane"})
	assert.Equal(t, "Hi Jane", body)
}

func TestApplyTemplateDefaults(t *testing.T) {
	svc := NewEnhancementService(nil)

	subject, body := svc.ApplyTemplate(
		"{{role}} at {{company}}",
		"Hi {{recruiter}}",
		models.CampaignContact{Email: "j@a.com"},
	)

	assert.Equal(t, "Software Developer at your company", subject)
	assert.Equal(t, "Hi there", body)
}

func TestParseEnhancedResponse(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		wantSubject string
		wantBody    string
		wantOK      bool
	}{
		{
			name:        "well formed",
			content:     "SUBJECT: Better subject\nBODY: Better body\nwith two lines",
			wantSubject: "Better subject",
			wantBody:    "Better body\nwith two lines",
			wantOK:      true,
		},
		{
			name:        "leading chatter before sections",
			content:     "Sure, here you go:\nSUBJECT: Hello\nBODY: World",
			wantSubject: "Hello",
			wantBody:    "World",
			wantOK:      true,
		},
		{
			name:    "format ignored",
			content: "Here is a nicer email for you.",
			wantOK:  false,
		},
		{
			name:    "body before subject",
			content: "BODY: x\nSUBJECT: y",
			wantOK:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subject, body, ok := parseEnhancedResponse(tt.content)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantSubject, subject)
				assert.Equal(t, tt.wantBody, body)
			}
		})
	}
}
