package mailer

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"

	"github.com/ulc-tools/blurb-scheduler/backend/internal/domain"
	"github.com/wneessen/go-mail"
)

//go:embed templates
var templateFS embed.FS

var (
	newAccountTemplate    = htmltemplate.Must(htmltemplate.ParseFS(templateFS, "templates/new_account_email.html"))
	resetPasswordTemplate = htmltemplate.Must(htmltemplate.ParseFS(templateFS, "templates/reset_password_otp_email.html"))
	blurbTemplate         = htmltemplate.Must(htmltemplate.ParseFS(templateFS, "templates/schedule_blurb_email.html"))
	blurbTextTemplate     = texttemplate.Must(texttemplate.ParseFS(templateFS, "templates/schedule_blurb_email.txt"))
)

// ErrUnsupportedType marks queued messages no template exists for. They should be dropped, not retried.
var ErrUnsupportedType = errors.New("unsupported mail type")

// Build turns a queued message into a ready-to-send mail from the given sender.
func Build(from string, message *domain.MailMessage) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(from); err != nil {
		return nil, fmt.Errorf("set sender: %w", err)
	}
	if err := msg.To(message.To); err != nil {
		return nil, fmt.Errorf("set recipient: %w", err)
	}

	switch message.Type {
	case domain.MailTypeCreateUser:
		data := domain.CreateUserMailData{}
		if err := decodeData(message.Data, &data); err != nil {
			return nil, err
		}
		if err := msg.SetBodyHTMLTemplate(newAccountTemplate, data); err != nil {
			return nil, fmt.Errorf("render body: %w", err)
		}
		msg.Subject("ULC Blurb Scheduler - Your account")
	case domain.MailTypeResetPassword:
		data := domain.ResetPasswordMailData{}
		if err := decodeData(message.Data, &data); err != nil {
			return nil, err
		}
		if err := msg.SetBodyHTMLTemplate(resetPasswordTemplate, data); err != nil {
			return nil, fmt.Errorf("render body: %w", err)
		}
		msg.Subject("ULC Blurb Scheduler - Reset your password")
	case domain.MailTypeScheduleBlurb:
		data := domain.ScheduleBlurbMailData{}
		if err := decodeData(message.Data, &data); err != nil {
			return nil, err
		}
		if err := msg.SetBodyHTMLTemplate(blurbTemplate, data); err != nil {
			return nil, fmt.Errorf("render body: %w", err)
		}
		if err := msg.AddAlternativeTextTemplate(blurbTextTemplate, data); err != nil {
			return nil, fmt.Errorf("render text body: %w", err)
		}
		msg.Subject("ULC tutoring availability - week of " + data.StagingWeek)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, message.Type)
	}

	return msg, nil
}

// decodeData converts Data, a generic map after the trip through the queue, into its typed form.
func decodeData(data any, dst any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode mail data: %w", err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode mail data: %w", err)
	}
	return nil
}
