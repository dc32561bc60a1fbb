package services

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/gophcrm/internal/common"
	"github.com/dmitrijs2005/gophcrm/internal/logging"
	"github.com/dmitrijs2005/gophcrm/internal/server/config"
	"github.com/dmitrijs2005/gophcrm/internal/server/models"
	"github.com/dmitrijs2005/gophcrm/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in, optFns...)
	}

	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

type ExportFormat string

const (
	ExportCSV  ExportFormat = "csv"
	ExportJSON ExportFormat = "json"
)

func ParseExportFormat(s string) (ExportFormat, error) {
	switch f := ExportFormat(s); f {
	case ExportCSV, ExportJSON:
		return f, nil
	case "":
		return ExportCSV, nil
	default:
		return "", fmt.Errorf("%w: unknown export format %q", common.ErrorValidation, s)
	}
}

func (f ExportFormat) ContentType() string {
	if f == ExportJSON {
		return "application/json"
	}
	return "text/csv"
}

// Export is a rendered email log export.
type Export struct {
	Format      ExportFormat
	ContentType string
	Data        []byte
}

// ExportArchive points at an export stored in the bucket.
type ExportArchive struct {
	Key       string
	URL       string
	ExpiresAt time.Time
}

type exportedLog struct {
	ID             int64              `json:"id"`
	CustomerID     *int64             `json:"customer_id"`
	UserID         int64              `json:"user_id"`
	EmailType      string             `json:"email_type"`
	Subject        string             `json:"subject"`
	Content        string             `json:"content"`
	RecipientEmail string             `json:"recipient_email"`
	SentAt         time.Time          `json:"sent_at"`
	Status         models.EmailStatus `json:"status"`
	ErrorMessage   *string            `json:"error_message,omitempty"`
}

var csvHeader = []string{"id", "customer_id", "user_id", "email_type", "subject", "recipient_email",
	"sent_at", "status", "error_message", "content"}

// ExportService renders the email log and archives it to S3-compatible
// object storage.
type ExportService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	config      *config.Config
	logger      logging.Logger
	now         func() time.Time
}

func NewExportService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, logger logging.Logger) *ExportService {
	return &ExportService{
		db:          db,
		repomanager: m,
		config:      cfg,
		logger:      logger.With("module", "export_service"),
		now:         time.Now,
	}
}

// EmailLogs renders every email log entry in the given format.
func (s *ExportService) EmailLogs(ctx context.Context, format ExportFormat) (*Export, error) {
	logs, err := s.repomanager.EmailLogs(s.db).ListAll(ctx)
	if err != nil {
		return nil, repoError(ctx, s.logger, "export email logs", err)
	}

	var data []byte
	switch format {
	case ExportJSON:
		data, err = renderJSON(logs)
	case ExportCSV:
		data, err = renderCSV(logs)
	default:
		return nil, fmt.Errorf("%w: unknown export format %q", common.ErrorValidation, format)
	}
	if err != nil {
		s.logger.Error(ctx, "render export", "format", format, "error", err)
		return nil, common.ErrorInternal
	}

	return &Export{Format: format, ContentType: format.ContentType(), Data: data}, nil
}

func renderJSON(logs []models.EmailLog) ([]byte, error) {
	out := make([]exportedLog, 0, len(logs))
	for _, l := range logs {
		out = append(out, exportedLog(l))
	}
	return json.MarshalIndent(out, "", "  ")
}

func renderCSV(logs []models.EmailLog) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, l := range logs {
		var customerID, errMsg string
		if l.CustomerID != nil {
			customerID = strconv.FormatInt(*l.CustomerID, 10)
		}
		if l.ErrorMessage != nil {
			errMsg = *l.ErrorMessage
		}
		rec := []string{
			strconv.FormatInt(l.ID, 10),
			customerID,
			strconv.FormatInt(l.UserID, 10),
			l.EmailType,
			l.Subject,
			l.RecipientEmail,
			l.SentAt.UTC().Format(time.RFC3339),
			string(l.Status),
			errMsg,
			l.Content,
		}
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Archive uploads a fresh export to the configured bucket and returns a
// presigned link to download it.
func (s *ExportService) Archive(ctx context.Context, format ExportFormat) (*ExportArchive, error) {
	export, err := s.EmailLogs(ctx, format)
	if err != nil {
		return nil, err
	}

	client, err := s.getS3Client(ctx)
	if err != nil {
		s.logger.Error(ctx, "s3 client", "error", err)
		return nil, common.ErrorInternal
	}

	bucket := s.config.S3Bucket
	key := s.storageKey(format)

	_, err = putObject(client, ctx, &s3.PutObjectInput{
		Bucket:      &bucket,
		Key:         &key,
		Body:        bytes.NewReader(export.Data),
		ContentType: aws.String(export.ContentType),
	})
	if err != nil {
		s.logger.Error(ctx, "upload export", "key", key, "error", err)
		return nil, common.ErrorInternal
	}

	validity := s.config.ExportLinkValidityDuration
	req, err := presignGetObject(newS3PresignClient(client), ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(validity))
	if err != nil {
		s.logger.Error(ctx, "presign export", "key", key, "error", err)
		return nil, common.ErrorInternal
	}

	s.logger.Info(ctx, "export archived", "key", key, "bytes", len(export.Data))
	return &ExportArchive{Key: key, URL: req.URL, ExpiresAt: s.now().Add(validity)}, nil
}

func (s *ExportService) storageKey(format ExportFormat) string {
	d := s.now().UTC()
	return fmt.Sprintf("exports/email-logs/%d/%02d/%02d/%v.%s", d.Year(), d.Month(), d.Day(), uuid.New(), format)
}

func (s *ExportService) getS3Client(ctx context.Context) (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(s.config.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	return newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
		o.UsePathStyle = true
	}), nil
}
