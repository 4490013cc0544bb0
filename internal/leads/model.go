package leads

import "time"

// Sentinel values written when the visitor left the optional selects
// untouched. Downstream consumers (webhook, admin dashboard) expect
// these literals instead of empty strings.
const (
	DefaultAgeGroup       = "Não especificado"
	DefaultCourseInterest = "Informações gerais"
)

// Lead represents a contact-form submission enriched with consent and
// attribution metadata. ID and CreatedAt are assigned by the store.
type Lead struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email,omitempty"`
	WhatsApp        string    `json:"whatsapp"`
	AgeGroup        string    `json:"age_group"`
	CourseInterest  string    `json:"course_interest"`
	Message         string    `json:"message,omitempty"`
	EmailConsent    bool      `json:"email_consent"`
	WhatsAppConsent bool      `json:"whatsapp_consent"`
	UTMSource       string    `json:"utm_source,omitempty"`
	UTMMedium       string    `json:"utm_medium,omitempty"`
	UTMCampaign     string    `json:"utm_campaign,omitempty"`
	UTMContent      string    `json:"utm_content,omitempty"`
	ReferrerURL     string    `json:"url_referrer,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// UTMParams is the attribution block the form forwards from the browser.
// It is only used as a fallback: a snapshot captured server-side for the
// session always takes precedence.
type UTMParams struct {
	UTMSource   string `json:"utm_source,omitempty"`
	UTMMedium   string `json:"utm_medium,omitempty"`
	UTMCampaign string `json:"utm_campaign,omitempty"`
	UTMContent  string `json:"utm_content,omitempty"`
	ReferrerURL string `json:"url_referrer,omitempty"`
}

// SubmitLeadRequest is the raw contact-form payload.
type SubmitLeadRequest struct {
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	WhatsApp        string    `json:"whatsapp"`
	AgeGroup        string    `json:"age_group"`
	CourseInterest  string    `json:"course_interest"`
	Message         string    `json:"message"`
	EmailConsent    bool      `json:"email_consent"`
	WhatsAppConsent bool      `json:"whatsapp_consent"`
	UTMParams       UTMParams `json:"utmParams"`
}

// Option is one entry of a form select.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// AgeGroups lists the age ranges offered by the form. The list is
// advisory: the validator accepts values outside it.
var AgeGroups = []Option{
	{Value: "", Label: DefaultAgeGroup},
	{Value: "familia", Label: "Para família (várias idades)"},
	{Value: "criancas-4-6", Label: "Crianças (4-6 anos)"},
	{Value: "criancas-7-10", Label: "Crianças (7-10 anos)"},
	{Value: "adolescentes-11-14", Label: "Adolescentes (11-14 anos)"},
	{Value: "jovens-15-17", Label: "Jovens (15-17 anos)"},
	{Value: "adultos-18-plus", Label: "Adultos (18+ anos)"},
}

// CourseInterests lists the courses offered by the form. Advisory, like
// AgeGroups.
var CourseInterests = []Option{
	{Value: "", Label: DefaultCourseInterest},
	{Value: "ingles-geral", Label: "Inglês Geral"},
	{Value: "preparatorio-cambridge", Label: "Preparatório Cambridge"},
	{Value: "conversacao", Label: "Conversação"},
	{Value: "business-english", Label: "Business English"},
	{Value: "intensivo", Label: "Curso Intensivo"},
	{Value: "online", Label: "Aulas Online"},
	{Value: "kids", Label: "Inglês para Crianças"},
}
