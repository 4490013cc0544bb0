package leads

import (
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/vbndigital/culturapi/internal/config"
)

// User-facing validation messages, in the product's language.
const (
	msgNameTooShort    = "Nome deve ter pelo menos 2 caracteres"
	msgNameTooLong     = "Nome deve ter no máximo 50 caracteres"
	msgEmailInvalid    = "Email inválido"
	msgWhatsAppMissing = "WhatsApp é obrigatório"
	msgWhatsAppInvalid = "Número inválido. Use formato brasileiro (86 99999-9999) ou internacional (+55 86 99999-9999)"
	msgMessageTooLong  = "Mensagem deve ter no máximo 500 caracteres"
	msgEmailConsent    = "É necessário autorizar comunicação por email"
	msgWhatsAppConsent = "É necessário autorizar comunicação por WhatsApp"
)

// Validate checks every field of the submission and reports all
// violations at once, keyed by field name. A nil return means the
// request is valid.
//
// age_group and course_interest are deliberately not checked against the
// option lists: the form truncates choices, the validator does not.
func Validate(req *SubmitLeadRequest, policy config.EmailConsentPolicy) ValidationErrors {
	errs := ValidationErrors{}

	name := strings.TrimSpace(req.Name)
	switch {
	case utf8.RuneCountInString(name) < 2:
		errs["name"] = msgNameTooShort
	case utf8.RuneCountInString(name) > 50:
		errs["name"] = msgNameTooLong
	}

	email := strings.TrimSpace(req.Email)
	if email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			errs["email"] = msgEmailInvalid
		}
	}

	if strings.TrimSpace(req.WhatsApp) == "" {
		errs["whatsapp"] = msgWhatsAppMissing
	} else if n := len(sanitizeDigits(req.WhatsApp)); n < 8 || n > 15 {
		errs["whatsapp"] = msgWhatsAppInvalid
	}

	if utf8.RuneCountInString(req.Message) > 500 {
		errs["message"] = msgMessageTooLong
	}

	if !req.WhatsAppConsent {
		errs["whatsapp_consent"] = msgWhatsAppConsent
	}

	if emailConsentRequired(policy, email) && !req.EmailConsent {
		errs["email_consent"] = msgEmailConsent
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// emailConsentRequired resolves the configured policy against the
// submitted email. The default (linked) ties the checkbox to the
// presence of an address, so omitting the email never produces a
// spurious consent error.
func emailConsentRequired(policy config.EmailConsentPolicy, email string) bool {
	switch policy {
	case config.EmailConsentAlways:
		return true
	case config.EmailConsentNever:
		return false
	default:
		return email != ""
	}
}
