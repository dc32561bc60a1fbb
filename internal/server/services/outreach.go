package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophcrm/internal/common"
	"github.com/dmitrijs2005/gophcrm/internal/logging"
	"github.com/dmitrijs2005/gophcrm/internal/server/config"
	"github.com/dmitrijs2005/gophcrm/internal/server/mailer"
	"github.com/dmitrijs2005/gophcrm/internal/server/metrics"
	"github.com/dmitrijs2005/gophcrm/internal/server/models"
	"github.com/dmitrijs2005/gophcrm/internal/server/repositories/repomanager"
)

const (
	generationPrompt = "Generate a personalized outreach email for %s at %s. Template: %s"
	compliancePrompt = "Review the following email for HIPAA and Microsoft Responsible AI compliance. " +
		"Summarize any violations, or reply 'Compliant' if none. Email: %s"

	defaultComplianceSummary     = "Compliant"
	unavailableComplianceSummary = "Compliance review unavailable"
)

var (
	compliantWord = regexp.MustCompile(`(?i)\bcompliant\b`)
	negationTail  = regexp.MustCompile(`(?i)\b(?:not|non)[\s-]*$`)
)

// TextGenerator completes a single prompt. textgen.Client satisfies it.
type TextGenerator interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// OutreachService builds personalised email previews and sends approved
// batches. Generation and sending degrade per item and never abort a batch.
type OutreachService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	generator   TextGenerator
	sender      mailer.Sender
	failClosed  bool
	logger      logging.Logger
	now         func() time.Time
}

func NewOutreachService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config,
	generator TextGenerator, sender mailer.Sender, logger logging.Logger) *OutreachService {
	return &OutreachService{
		db:          db,
		repomanager: m,
		generator:   generator,
		sender:      sender,
		failClosed:  cfg.ComplianceFailClosed,
		logger:      logger.With("module", "outreach_service"),
		now:         time.Now,
	}
}

// IsCompliant reports whether a compliance review approves the email: at
// least one occurrence of the word "compliant" must not be directly negated
// ("not compliant", "non-compliant").
func IsCompliant(review string) bool {
	for _, loc := range compliantWord.FindAllStringIndex(review, -1) {
		if !negationTail.MatchString(review[:loc[0]]) {
			return true
		}
	}
	return false
}

// GeneratePreview returns one preview per customer, in input order.
// Duplicates are kept. Customers are processed one after another.
func (s *OutreachService) GeneratePreview(ctx context.Context, customers []models.Customer, template string) []models.GeneratedEmail {
	previews := make([]models.GeneratedEmail, 0, len(customers))
	for i := range customers {
		previews = append(previews, s.preview(ctx, &customers[i], template))
	}
	return previews
}

// GeneratePreviewForCustomers loads the customers by id and generates their
// previews. Ids that do not resolve to an active customer are skipped.
func (s *OutreachService) GeneratePreviewForCustomers(ctx context.Context, ids []int64, template string) ([]models.GeneratedEmail, error) {
	repo := s.repomanager.Customers(s.db)

	customers := make([]models.Customer, 0, len(ids))
	for _, id := range ids {
		c, err := repo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				s.logger.Warn(ctx, "customer not found, skipping", "customer_id", id)
				continue
			}
			s.logger.Error(ctx, "load customer", "customer_id", id, "error", err)
			return nil, common.ErrorInternal
		}
		if !c.IsActive {
			s.logger.Warn(ctx, "customer inactive, skipping", "customer_id", id)
			continue
		}
		customers = append(customers, *c)
	}

	return s.GeneratePreview(ctx, customers, template), nil
}

func (s *OutreachService) preview(ctx context.Context, c *models.Customer, template string) models.GeneratedEmail {
	contact := c.ContactName()
	personalized := MergeTemplate(template, c)

	body, err := s.generateBody(ctx, contact, c.CompanyName, personalized)
	if err != nil {
		metrics.GenerationFallbacks.WithLabelValues(metrics.StageBody).Inc()
		s.logger.Warn(ctx, "body generation fell back to template", "customer_id", c.ID, "error", err)
		body = personalized
	}

	compliant, summary := s.review(ctx, c.ID, body)
	metrics.ComplianceResults.WithLabelValues(metrics.ComplianceLabel(compliant)).Inc()

	return models.GeneratedEmail{
		CustomerID:        c.ID,
		ToEmail:           c.ContactEmail,
		Subject:           "Outreach to " + contact,
		Body:              body,
		IsCompliant:       compliant,
		ComplianceSummary: summary,
	}
}

func (s *OutreachService) generateBody(ctx context.Context, contact, company, personalized string) (string, error) {
	text, err := s.generator.Complete(ctx, fmt.Sprintf(generationPrompt, contact, company, personalized))
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrGenerationFailed, err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("%w: empty completion", common.ErrGenerationFailed)
	}
	return text, nil
}

// review asks the generator to check body. When no usable answer comes back
// the result is compliant unless the service is configured fail-closed.
func (s *OutreachService) review(ctx context.Context, customerID int64, body string) (bool, string) {
	text, err := s.generator.Complete(ctx, fmt.Sprintf(compliancePrompt, body))
	text = strings.TrimSpace(text)
	if err != nil || text == "" {
		metrics.GenerationFallbacks.WithLabelValues(metrics.StageCompliance).Inc()
		s.logger.Warn(ctx, "compliance review unavailable", "customer_id", customerID, "fail_closed", s.failClosed, "error", err)
		if s.failClosed {
			return false, unavailableComplianceSummary
		}
		return true, defaultComplianceSummary
	}
	return IsCompliant(text), text
}

// SendBatch records each preview as a sent email from senderID and hands it
// to the mail transport. Compliance is not checked here. A failure on one
// item is reported in its result and processing continues.
func (s *OutreachService) SendBatch(ctx context.Context, senderID int64, previews []models.GeneratedEmail) *models.BatchResult {
	repo := s.repomanager.EmailLogs(s.db)
	res := &models.BatchResult{Results: make([]models.SendResult, 0, len(previews))}

	for _, p := range previews {
		res.Attempted++
		item := models.SendResult{CustomerID: p.CustomerID}

		entry := &models.EmailLog{
			UserID:         senderID,
			EmailType:      common.EmailTypeOutreach,
			Subject:        p.Subject,
			Content:        p.Body,
			RecipientEmail: p.ToEmail,
			SentAt:         s.now().UTC(),
			Status:         models.EmailStatusSent,
		}
		if p.CustomerID != 0 {
			id := p.CustomerID
			entry.CustomerID = &id
		}

		saved, err := repo.Create(ctx, entry)
		if err != nil {
			s.logger.Error(ctx, "record sent email", "customer_id", p.CustomerID, "error", err)
			item.Error = "failed to record email"
			s.fail(res, item)
			continue
		}
		item.EmailLogID = saved.ID

		err = s.sender.Send(ctx, mailer.Message{
			EmailLogID: saved.ID,
			CustomerID: p.CustomerID,
			To:         p.ToEmail,
			Subject:    p.Subject,
			Body:       p.Body,
		})
		if err != nil {
			s.logger.Error(ctx, "deliver email", "customer_id", p.CustomerID, "email_log_id", saved.ID, "error", err)
			msg := err.Error()
			if uerr := repo.UpdateStatus(ctx, saved.ID, models.EmailStatusFailed, &msg); uerr != nil {
				s.logger.Error(ctx, "mark email failed", "email_log_id", saved.ID, "error", uerr)
			}
			item.Error = "delivery failed"
			s.fail(res, item)
			continue
		}

		item.OK = true
		res.Sent++
		res.Results = append(res.Results, item)
		metrics.EmailsSent.WithLabelValues(string(models.EmailStatusSent)).Inc()
	}

	s.logger.Info(ctx, "batch processed", "sender_id", senderID, "attempted", res.Attempted, "sent", res.Sent, "failed", res.Failed)
	return res
}

func (s *OutreachService) fail(res *models.BatchResult, item models.SendResult) {
	res.Failed++
	res.Results = append(res.Results, item)
	metrics.EmailsSent.WithLabelValues(string(models.EmailStatusFailed)).Inc()
}

// UpdateStatus records a delivery outcome reported after the fact. An empty
// errorMessage clears the stored message.
func (s *OutreachService) UpdateStatus(ctx context.Context, logID int64, status models.EmailStatus, errorMessage string) error {
	var msg *string
	if errorMessage != "" {
		msg = &errorMessage
	}

	err := s.repomanager.EmailLogs(s.db).UpdateStatus(ctx, logID, status, msg)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		s.logger.Error(ctx, "update email status", "email_log_id", logID, "error", err)
		return common.ErrorInternal
	}
	return nil
}
