package notify

import (
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

const (
	sendgridHost     = "https://api.sendgrid.com"
	sendgridEndpoint = "/v3/mail/send"
)

type Message struct {
	ToName  string
	ToEmail string
	Subject string
	Text    string
}

// EmailService delivers notification emails. Delivery is best-effort:
// implementations log failures instead of returning them.
type EmailService interface {
	Send(msg Message)
}

type sendgridService struct {
	key     string
	from    *sgmail.Email
	subjPfx string
	logger  zerolog.Logger
}

func NewSendgridService(apiKey, fromName, fromEmail string, logger zerolog.Logger) EmailService {
	return &sendgridService{
		key:     apiKey,
		from:    sgmail.NewEmail(fromName, fromEmail),
		subjPfx: "[TrackLy] ",
		logger:  logger,
	}
}

func (svc *sendgridService) Send(msg Message) {
	m := sgmail.NewV3Mail()
	m.SetFrom(svc.from)

	p := sgmail.NewPersonalization()
	p.Subject = svc.subjPfx + msg.Subject
	p.AddTos(sgmail.NewEmail(msg.ToName, msg.ToEmail))
	m.AddPersonalizations(p)
	m.AddContent(sgmail.NewContent("text/plain", msg.Text))

	req := sendgrid.GetRequest(svc.key, sendgridEndpoint, sendgridHost)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(m)

	res, err := sendgrid.API(req)
	if err != nil {
		svc.logger.Error().Err(err).Str("to", msg.ToEmail).Msg("sending email")
		return
	}
	if res.StatusCode >= http.StatusBadRequest {
		svc.logger.Error().Int("status", res.StatusCode).Str("to", msg.ToEmail).Msg("sendgrid rejected email")
	}
}

// consoleService prints mails to the log; used when no API key is configured.
type consoleService struct {
	logger zerolog.Logger
}

func NewConsoleService(logger zerolog.Logger) EmailService {
	return &consoleService{logger: logger}
}

func (svc *consoleService) Send(msg Message) {
	svc.logger.Info().
		Str("to", fmt.Sprintf("%s <%s>", msg.ToName, msg.ToEmail)).
		Str("subject", "[TrackLy] "+msg.Subject).
		Msg(msg.Text)
}
