package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"solar-proposal-backend/db/models"
	"solar-proposal-backend/internal/render"
	"solar-proposal-backend/proposals/repositories"
	"solar-proposal-backend/utils"
	"solar-proposal-backend/utils/dates"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func newProposal(name string) *models.Proposal {
	city := "Recife/PE"
	area := 22.5
	date, _ := dates.ParseDateOnly("2025-12-15")
	return &models.Proposal{
		ID:                        uuid.New(),
		CustomerName:              name,
		CityState:                 &city,
		ProposalDate:              date,
		ValidityDays:              4,
		PowerKWp:                  4.27,
		MonthlyGenerationKWh:      532,
		UsableAreaM2:              &area,
		ModuleModel:               "Canadian Solar 535W",
		ModuleQuantity:            8,
		InverterModel:             "Growatt MIN 3000TL-X",
		InverterQuantity:          1,
		WarrantyServices:          models.DefaultWarrantyServices,
		WarrantyModuleEquipment:   models.DefaultWarrantyModuleEquipment,
		WarrantyModulePerformance: models.DefaultWarrantyModulePerformance,
		WarrantyInverter:          models.DefaultWarrantyInverter,
		TotalPrice:                decimal.RequireFromString("11537.92"),
		CreatedBy:                 "admin",
	}
}

func newDocs(t *testing.T) *DocumentService {
	t.Helper()
	docs, err := NewDocumentService(DocumentOptions{})
	require.NoError(t, err)
	return docs
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "proposta_João_Silva_Santos.pdf", Filename("João Silva Santos"))
	assert.Equal(t, "proposta_Ana_Maria.pdf", Filename("Ana \t Maria"))
	assert.Equal(t, "proposta_Carlos.pdf", Filename("Carlos"))
}

func TestNewDocumentServiceRejectsUnknownDefault(t *testing.T) {
	_, err := NewDocumentService(DocumentOptions{DefaultVariant: "nope"})
	assert.ErrorIs(t, err, ErrUnknownVariant)
}

func TestResolveVariant(t *testing.T) {
	docs := newDocs(t)

	name, err := docs.ResolveVariant("")
	require.NoError(t, err)
	assert.Equal(t, "solar", name)

	name, err = docs.ResolveVariant("corporate")
	require.NoError(t, err)
	assert.Equal(t, "corporate", name)

	_, err = docs.ResolveVariant("missing")
	assert.ErrorIs(t, err, ErrUnknownVariant)

	assert.ElementsMatch(t, []string{"solar", "corporate"}, docs.Variants())
	assert.NotEmpty(t, docs.CompanyName(""))
	assert.Equal(t, docs.CompanyName(""), docs.CompanyName("missing"))
}

func TestLayoutProducesThreePages(t *testing.T) {
	doc, variant, err := newDocs(t).Layout(newProposal("João Silva Santos"), "")
	require.NoError(t, err)
	assert.Equal(t, "solar", variant)
	assert.Equal(t, 3, doc.PageCount())
}

func TestRenderBytesWithoutCache(t *testing.T) {
	docs := newDocs(t)
	p := newProposal("João Silva Santos")

	first, err := docs.RenderBytes(context.Background(), p, "")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(first, []byte("%PDF-")))

	second, err := docs.RenderBytes(context.Background(), p, "solar")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	_, err = docs.RenderBytes(context.Background(), p, "missing")
	assert.ErrorIs(t, err, ErrUnknownVariant)

	assert.NoError(t, docs.Invalidate(context.Background(), p.ID.String()))
}

func TestRenderStreamsSameBytes(t *testing.T) {
	docs := newDocs(t)
	p := newProposal("João Silva Santos")

	want, err := docs.RenderBytes(context.Background(), p, "corporate")
	require.NoError(t, err)

	stream, err := docs.Render(context.Background(), p, "corporate")
	require.NoError(t, err)
	got, err := io.ReadAll(stream)
	require.NoError(t, err)
	require.NoError(t, stream.Close())
	assert.Equal(t, want, got)
}

func TestRenderFailureBeforeFirstByte(t *testing.T) {
	docs, err := NewDocumentService(DocumentOptions{LogoPath: filepath.Join(t.TempDir(), "missing.png")})
	require.NoError(t, err)

	stream, err := docs.Render(context.Background(), newProposal("João"), "")
	assert.Nil(t, stream)
	assert.ErrorIs(t, err, render.ErrRender)
}

func TestRenderCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stream, err := newDocs(t).Render(ctx, newProposal("João"), "")
	if err == nil {
		// The render may win the race against the cancelled context.
		require.NoError(t, stream.Close())
		return
	}
	assert.ErrorIs(t, err, context.Canceled)
}

func TestToRecordAndSearchDocument(t *testing.T) {
	p := newProposal("João Silva Santos")
	p.CityState = nil

	rec := ToRecord(p)
	assert.Equal(t, p.ID.String(), rec.ID)
	assert.Empty(t, rec.CityState)
	assert.Empty(t, rec.OtherItems)
	assert.Equal(t, time.Date(2025, time.December, 19, 0, 0, 0, 0, time.UTC), rec.ValidUntil())

	doc := ToSearchDocument(p)
	assert.Equal(t, "2025-12-15", doc.ProposalDate)
	assert.Equal(t, "11537.92", doc.TotalPrice)
	assert.Equal(t, "João Silva Santos", doc.CustomerName)
}

func TestWriteProposalsXLSX(t *testing.T) {
	a := newProposal("João Silva Santos")
	b := newProposal("Maria Oliveira")
	b.CityState = nil

	var buf bytes.Buffer
	require.NoError(t, WriteProposalsXLSX(&buf, []models.Proposal{*a, *b}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Propostas")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Len(t, rows[0], 16)
	assert.Equal(t, a.ID.String(), rows[1][0])
	assert.Equal(t, "João Silva Santos", rows[1][1])
	assert.Equal(t, "Maria Oliveira", rows[2][1])
}

type fakeMailer struct {
	to          string
	subject     string
	body        string
	attachments []utils.Attachment
	err         error
}

func (m *fakeMailer) Send(to, subject, htmlBody string, attachments ...utils.Attachment) error {
	m.to, m.subject, m.body, m.attachments = to, subject, htmlBody, attachments
	return m.err
}

type fakeQueue struct {
	task *asynq.Task
	err  error
}

func (q *fakeQueue) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	if q.err != nil {
		return nil, q.err
	}
	q.task = task
	return &asynq.TaskInfo{ID: "task-1", Type: task.Type()}, nil
}

func newWorker(t *testing.T, mailer utils.Mailer) (*EmailWorker, repositories.ProposalRepository, string) {
	t.Helper()
	repo := repositories.NewMemoryProposalRepository()
	dir := t.TempDir()
	return NewEmailWorker(repo, newDocs(t), utils.NewLocalFileStorage(dir), mailer, time.UTC), repo, dir
}

func TestEnqueueEmail(t *testing.T) {
	q := &fakeQueue{}
	id, err := EnqueueEmail(context.Background(), q, EmailPayload{ProposalID: "abc", To: "cliente@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "task-1", id)
	assert.Equal(t, TypeProposalEmail, q.task.Type())
	assert.JSONEq(t, `{"proposal_id":"abc","to":"cliente@example.com","variant":""}`, string(q.task.Payload()))

	_, err = EnqueueEmail(context.Background(), &fakeQueue{err: errors.New("redis down")}, EmailPayload{})
	assert.ErrorContains(t, err, "redis down")
}

func TestHandleEmailTaskSendsAndArchives(t *testing.T) {
	mailer := &fakeMailer{}
	worker, repo, dir := newWorker(t, mailer)
	p, err := repo.CreateProposal(newProposal("João <Silva>"))
	require.NoError(t, err)

	task, err := NewEmailTask(EmailPayload{ProposalID: p.ID.String(), To: "cliente@example.com", Variant: "corporate"})
	require.NoError(t, err)
	require.NoError(t, worker.HandleEmailTask(context.Background(), task))

	assert.Equal(t, "cliente@example.com", mailer.to)
	assert.Equal(t, "Proposta Comercial – João <Silva>", mailer.subject)
	assert.Contains(t, mailer.body, "João &lt;Silva&gt;")
	require.Len(t, mailer.attachments, 1)
	assert.Equal(t, "application/pdf", mailer.attachments[0].ContentType)
	assert.Equal(t, "proposta_João_<Silva>.pdf", mailer.attachments[0].Name)
	assert.True(t, bytes.HasPrefix(mailer.attachments[0].Data, []byte("%PDF-")))

	archived := filepath.Join(dir, time.Now().UTC().Format("2006-01"), p.ID.String()+"_"+mailer.attachments[0].Name)
	data, err := os.ReadFile(archived)
	require.NoError(t, err)
	assert.Equal(t, mailer.attachments[0].Data, data)
}

func TestHandleEmailTaskSkipsRetryForBadInput(t *testing.T) {
	worker, _, _ := newWorker(t, &fakeMailer{})

	err := worker.HandleEmailTask(context.Background(), asynq.NewTask(TypeProposalEmail, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)

	task, _ := NewEmailTask(EmailPayload{ProposalID: "not-a-uuid"})
	assert.ErrorIs(t, worker.HandleEmailTask(context.Background(), task), asynq.SkipRetry)

	task, _ = NewEmailTask(EmailPayload{ProposalID: uuid.NewString()})
	assert.ErrorIs(t, worker.HandleEmailTask(context.Background(), task), asynq.SkipRetry)
}

func TestHandleEmailTaskRetriesMailerFailure(t *testing.T) {
	worker, repo, _ := newWorker(t, &fakeMailer{err: errors.New("smtp timeout")})
	p, err := repo.CreateProposal(newProposal("Maria"))
	require.NoError(t, err)

	task, _ := NewEmailTask(EmailPayload{ProposalID: p.ID.String(), To: "a@b.com"})
	err = worker.HandleEmailTask(context.Background(), task)
	require.Error(t, err)
	assert.NotErrorIs(t, err, asynq.SkipRetry)
	assert.True(t, strings.Contains(err.Error(), "smtp timeout"))
}
