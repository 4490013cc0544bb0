package leads

import (
	"fmt"
	"net/url"

	"github.com/vbndigital/culturapi/internal/config"
)

// WhatsAppMessage builds the fixed Portuguese greeting the visitor sends
// when following the post-submit redirect. Personalized with the name
// only.
func WhatsAppMessage(name string) string {
	return fmt.Sprintf(
		"Olá! Meu nome é %s e tenho interesse em fazer um curso na Cultura Inglesa Teresina.\n\n"+
			"\n Gostaria de receber mais informações sobre matrículas e horários disponíveis. Obrigado!",
		name,
	)
}

// WhatsAppLink builds the wa.me deep link that opens the messaging app
// with the greeting pre-filled. number is the school's WhatsApp line
// (WHATSAPP_NUMBER); empty falls back to the production default.
func WhatsAppLink(number, name string) string {
	if number == "" {
		number = config.DefaultWhatsAppNumber
	}
	return fmt.Sprintf("https://wa.me/%s?text=%s", number, url.QueryEscape(WhatsAppMessage(name)))
}
