package notification

import (
	"fmt"
	"time"

	"github.com/Archanasadhasivam/AgriPricePredict/pkg/logger"

	"github.com/go-resty/resty/v2"
	"github.com/pobyzaarif/goshortcute"
)

type MailjetConfig struct {
	MailjetBaseURL           string
	MailjetBasicAuthUsername string
	MailjetBasicAuthPassword string
	MailjetSenderEmail       string
	MailjetSenderName        string
}

type MailjetRepository struct {
	mailjetConfig MailjetConfig
	client        *resty.Client
}

func NewMailjetRepository(cfg MailjetConfig) *MailjetRepository {
	return &MailjetRepository{
		mailjetConfig: cfg,
		client:        resty.New().SetTimeout(5 * time.Second),
	}
}

type payloadSendEmail struct {
	Messages []message `json:"Messages"`
}

type address struct {
	Email string `json:"Email"`
	Name  string `json:"Name"`
}

type message struct {
	From     address   `json:"From"`
	To       []address `json:"To"`
	Subject  string    `json:"Subject"`
	TextPart string    `json:"TextPart"`
	HTMLPart string    `json:"HTMLPart"`
}

func (r *MailjetRepository) SendEmail(toName, toEmail, subject, body string) (err error) {
	url := r.mailjetConfig.MailjetBaseURL + "/v3.1/send"

	payload := payloadSendEmail{
		Messages: []message{{
			From: address{
				Email: r.mailjetConfig.MailjetSenderEmail,
				Name:  r.mailjetConfig.MailjetSenderName,
			},
			To:       []address{{Email: toEmail, Name: toName}},
			Subject:  subject,
			TextPart: body,
			HTMLPart: body,
		}},
	}

	buildBasicAuth := goshortcute.StringtoBase64Encode(r.mailjetConfig.MailjetBasicAuthUsername + ":" + r.mailjetConfig.MailjetBasicAuthPassword)

	res, err := r.client.R().
		SetHeader("Content-Type", "application/json").
		SetHeader("Authorization", "Basic "+buildBasicAuth).
		SetBody(payload).
		Post(url)
	if err != nil {
		return fmt.Errorf("failed to call mailer service: %w", err)
	}

	if res.IsSuccess() {
		return nil
	}

	logger.Warn("Mailjet rejected message", "status", res.StatusCode(), "response", res.String())

	return fmt.Errorf("mailer service return negative response %v", res.StatusCode())
}
