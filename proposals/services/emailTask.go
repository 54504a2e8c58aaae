package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"time"

	"solar-proposal-backend/config"
	"solar-proposal-backend/internal/metrics"
	"solar-proposal-backend/proposals/repositories"
	"solar-proposal-backend/utils"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const TypeProposalEmail = "proposal:email"

const emailMaxRetry = 3

type EmailPayload struct {
	ProposalID string `json:"proposal_id"`
	To         string `json:"to"`
	Variant    string `json:"variant"`
}

func NewEmailTask(payload EmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode email payload: %w", err)
	}
	return asynq.NewTask(TypeProposalEmail, data, asynq.MaxRetry(emailMaxRetry), asynq.Queue("default")), nil
}

// Enqueuer is satisfied by *asynq.Client.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// EnqueueEmail schedules delivery and returns the task id.
func EnqueueEmail(ctx context.Context, q Enqueuer, payload EmailPayload) (string, error) {
	task, err := NewEmailTask(payload)
	if err != nil {
		return "", err
	}
	info, err := q.EnqueueContext(ctx, task)
	if err != nil {
		return "", fmt.Errorf("failed to enqueue email task: %w", err)
	}
	return info.ID, nil
}

// EmailWorker delivers proposal PDFs. The PDF is archived before it is sent,
// so a retried task overwrites the same archive file.
type EmailWorker struct {
	repo     repositories.ProposalRepository
	docs     *DocumentService
	storage  utils.FileStorage
	mailer   utils.Mailer
	location *time.Location
}

func NewEmailWorker(repo repositories.ProposalRepository, docs *DocumentService, storage utils.FileStorage, mailer utils.Mailer, loc *time.Location) *EmailWorker {
	if loc == nil {
		loc = time.UTC
	}
	return &EmailWorker{repo: repo, docs: docs, storage: storage, mailer: mailer, location: loc}
}

func emailSubject(customerName string) string {
	return "Proposta Comercial – " + customerName
}

func emailBody(customerName, company string) string {
	return fmt.Sprintf(
		"<p>Olá, %s.</p><p>Segue em anexo a sua proposta comercial de energia solar.</p><p>Atenciosamente,<br>%s</p>",
		html.EscapeString(customerName), html.EscapeString(company),
	)
}

func (w *EmailWorker) HandleEmailTask(ctx context.Context, t *asynq.Task) error {
	var payload EmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("invalid email payload: %v: %w", err, asynq.SkipRetry)
	}

	id, err := uuid.Parse(payload.ProposalID)
	if err != nil {
		return fmt.Errorf("invalid proposal id %q: %w", payload.ProposalID, asynq.SkipRetry)
	}

	proposal, err := w.repo.GetProposalByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrProposalNotFound) {
			metrics.IncEmail(metrics.ResultError)
			config.Logger.Warn("Proposal email dropped, proposal not found", zap.String("proposal_id", payload.ProposalID))
			return fmt.Errorf("proposal %s: %v: %w", payload.ProposalID, err, asynq.SkipRetry)
		}
		return err
	}

	pdf, err := w.docs.RenderBytes(ctx, proposal, payload.Variant)
	if err != nil {
		metrics.IncEmail(metrics.ResultError)
		return fmt.Errorf("failed to render proposal %s: %w", payload.ProposalID, err)
	}

	name := Filename(proposal.CustomerName)
	archived := fmt.Sprintf("%s/%s_%s", time.Now().In(w.location).Format("2006-01"), proposal.ID, name)
	if _, err := w.storage.SaveFromReader(bytes.NewReader(pdf), archived); err != nil {
		config.Logger.Warn("Failed to archive proposal PDF", zap.String("path", archived), zap.Error(err))
	}

	company := w.docs.CompanyName(payload.Variant)
	err = w.mailer.Send(payload.To, emailSubject(proposal.CustomerName), emailBody(proposal.CustomerName, company),
		utils.Attachment{Name: name, ContentType: "application/pdf", Data: pdf})
	if err != nil {
		metrics.IncEmail(metrics.ResultError)
		return fmt.Errorf("failed to send proposal %s: %w", payload.ProposalID, err)
	}

	metrics.IncEmail(metrics.ResultSuccess)
	config.Logger.Info("Proposal emailed",
		zap.String("proposal_id", payload.ProposalID),
		zap.String("to", payload.To),
		zap.String("archive", archived),
	)
	return nil
}

// Register mounts the worker handlers on an asynq mux.
func (w *EmailWorker) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeProposalEmail, w.HandleEmailTask)
}
