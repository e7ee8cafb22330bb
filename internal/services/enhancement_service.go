package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/raakesh-m/autosendr-backend/internal/models"
)

// Placeholder defaults used when a contact field is absent
const (
	defaultRecruiter = "there"
	defaultCompany   = "your company"
	defaultRole      = "Software Developer"
)

// EnhancedEmail is the outcome of template substitution plus optional AI
// enhancement for one contact
type EnhancedEmail struct {
	Subject    string
	Body       string
	AIEnhanced bool
	Provider   string
}

// EnhancementService turns a template plus contact data into a ready-to-send
// email, optionally rewritten by the AI facade
type EnhancementService struct {
	aiService *AIService
}

func NewEnhancementService(aiService *AIService) *EnhancementService {
	return &EnhancementService{aiService: aiService}
}

// ApplyTemplate substitutes {{recruiter}}, {{company}} and {{role}}
// placeholders with contact fields, falling back to generic defaults
func (s *EnhancementService) ApplyTemplate(subject, body string, contact models.CampaignContact) (string, string) {
	recruiter := contact.RecruiterName
	if recruiter == "" {
		recruiter = contact.Name
	}
	if recruiter == "" {
		recruiter = defaultRecruiter
	}
	company := contact.Company
	if company == "" {
		company = defaultCompany
	}
	role := contact.Role
	if role == "" {
		role = defaultRole
	}

	replacer := strings.NewReplacer(
		"{{recruiter}}", recruiter,
		"{{company}}", company,
		"{{role}}", role,
	)
	return replacer.Replace(subject), replacer.Replace(body)
}

// EnhanceEmail substitutes placeholders and asks the AI facade to personalize
// the result. The returned GenerateResult carries the failure details when
// enhancement did not happen; callers decide whether to skip or send as-is.
func (s *EnhancementService) EnhanceEmail(ctx context.Context, userID string, template *models.EmailTemplate, contact models.CampaignContact, opts models.GenerateOptions) (*EnhancedEmail, *models.GenerateResult) {
	subject, body := s.ApplyTemplate(template.Subject, template.Body, contact)

	prompt := s.buildPrompt(subject, body, template.AIRules, contact)
	result := s.aiService.GenerateContent(ctx, userID, prompt, opts)
	if !result.Success {
		return &EnhancedEmail{Subject: subject, Body: body}, result
	}

	enhancedSubject, enhancedBody, ok := parseEnhancedResponse(result.Content)
	if !ok {
		// Model ignored the response format; keep the substituted subject and
		// use the whole completion as the body
		enhancedSubject = subject
		enhancedBody = strings.TrimSpace(result.Content)
	}

	return &EnhancedEmail{
		Subject:    enhancedSubject,
		Body:       enhancedBody,
		AIEnhanced: true,
		Provider:   result.Provider,
	}, result
}

func (s *EnhancementService) buildPrompt(subject, body, aiRules string, contact models.CampaignContact) string {
	var sb strings.Builder
	sb.WriteString("Improve the following outreach email. Keep it professional, concise and personal.\n")
	sb.WriteString("Respond in exactly this format:\nSUBJECT: <improved subject>\nBODY: <improved body>\n\n")

	if contact.Company != "" {
		sb.WriteString(fmt.Sprintf("The recipient works at %s.\n", contact.Company))
	}
	if contact.Role != "" {
		sb.WriteString(fmt.Sprintf("The email is about a %s position.\n", contact.Role))
	}
	if aiRules != "" {
		sb.WriteString("Additional instructions: " + aiRules + "\n")
	}

	sb.WriteString("\nSUBJECT: " + subject + "\n")
	sb.WriteString("BODY:\n" + body + "\n")
	return sb.String()
}

// parseEnhancedResponse extracts the SUBJECT:/BODY: sections from a
// completion. Returns ok=false when the format was not honored.
func parseEnhancedResponse(content string) (string, string, bool) {
	content = strings.TrimSpace(content)

	subjectIdx := strings.Index(content, "SUBJECT:")
	bodyIdx := strings.Index(content, "BODY:")
	if subjectIdx == -1 || bodyIdx == -1 || bodyIdx < subjectIdx {
		return "", "", false
	}

	subject := strings.TrimSpace(content[subjectIdx+len("SUBJECT:") : bodyIdx])
	body := strings.TrimSpace(content[bodyIdx+len("BODY:"):])
	if subject == "" || body == "" {
		return "", "", false
	}
	return subject, body, true
}
