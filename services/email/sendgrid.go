package emailsvc

import (
	"net/http"

	"github.com/pkg/errors"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/trezcool/usajili/core"
)

type sendgridService struct {
	conf       *core.Config
	logger     core.Logger
	client     *sendgrid.Client
	from       *sgmail.Email
	subjPrefix string
}

var _ core.EmailService = (*sendgridService)(nil)

func NewSendgridService(conf *core.Config, logger core.Logger) core.EmailService {
	return &sendgridService{
		conf:       conf,
		logger:     logger,
		client:     sendgrid.NewSendClient(conf.SendgridApiKey),
		from:       sgmail.NewEmail(conf.DefaultFromEmail.Name, conf.DefaultFromEmail.Address),
		subjPrefix: "[" + conf.AppName + "] ",
	}
}

func (svc sendgridService) SendMessages(messages ...*core.EmailMessage) {
	for _, msg := range messages {
		go svc.sendMessage(msg)
	}
}

func (svc sendgridService) sendMessage(msg *core.EmailMessage) {
	if err := msg.Render(svc.conf); err != nil {
		svc.logger.Error("rendering email", errors.Wrap(err, "emailsvc.sendMessage"))
		return
	}
	if msg.HasRecipients() && (msg.HasContent() || msg.HasAttachments()) {
		svc.send(*msg)
	}
}

func (svc sendgridService) send(msg core.EmailMessage) {
	sgm := sgmail.NewV3Mail()
	sgm.SetFrom(svc.from)
	sgm.Subject = svc.subjPrefix + msg.Subject

	p := sgmail.NewPersonalization()
	for _, to := range msg.To {
		p.AddTos(sgmail.NewEmail(to.Name, to.Address))
	}
	for _, cc := range msg.Cc {
		p.AddCCs(sgmail.NewEmail(cc.Name, cc.Address))
	}
	for _, bcc := range msg.Bcc {
		p.AddBCCs(sgmail.NewEmail(bcc.Name, bcc.Address))
	}
	sgm.AddPersonalizations(p)

	if msg.TextContent != "" {
		sgm.AddContent(sgmail.NewContent("text/plain", msg.TextContent))
	}
	if msg.HTMLContent != "" {
		sgm.AddContent(sgmail.NewContent("text/html", msg.HTMLContent))
	}

	for _, at := range msg.Attachments {
		sgAt := sgmail.NewAttachment()
		sgAt.SetContent(at.Content.String())
		sgAt.SetType(at.ContentType)
		sgAt.SetFilename(at.Filename)
		sgAt.SetDisposition("attachment")
		sgm.AddAttachment(sgAt)
	}

	resp, err := svc.client.Send(sgm)
	if err != nil {
		svc.logger.Error("sending email", errors.Wrap(err, "emailsvc.send"))
		return
	}
	if resp.StatusCode >= http.StatusBadRequest {
		svc.logger.Error("sending email", errors.Errorf("emailsvc.send: sendgrid responded %d: %s", resp.StatusCode, resp.Body))
	}
}
