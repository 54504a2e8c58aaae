package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	bleveRepositories "solar-proposal-backend/bleve/repositories"
	bleveServices "solar-proposal-backend/bleve/services"
	"solar-proposal-backend/proposals/repositories"
	"solar-proposal-backend/proposals/services"
	"solar-proposal-backend/token"
	"solar-proposal-backend/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

type event struct {
	kind    websocket.MessageType
	id      string
	payload interface{}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []event
}

func (p *recordingPublisher) Publish(kind websocket.MessageType, id string, payload interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event{kind: kind, id: id, payload: payload})
}

func (p *recordingPublisher) last(kind websocket.MessageType) (event, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := len(p.events) - 1; i >= 0; i-- {
		if p.events[i].kind == kind {
			return p.events[i], true
		}
	}
	return event{}, false
}

func (p *recordingPublisher) kinds() []websocket.MessageType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]websocket.MessageType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.kind)
	}
	return out
}

type stubQueue struct {
	tasks []*asynq.Task
	err   error
}

func (q *stubQueue) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	if q.err != nil {
		return nil, q.err
	}
	q.tasks = append(q.tasks, task)
	return &asynq.TaskInfo{ID: "task-42"}, nil
}

type harness struct {
	app    *fiber.App
	ctrl   *ProposalController
	events *recordingPublisher
	queue  *stubQueue
}

func newHarness(t *testing.T, opts services.DocumentOptions) *harness {
	t.Helper()
	docs, err := services.NewDocumentService(opts)
	require.NoError(t, err)

	indexer := bleveServices.NewMemIndexingService(zap.NewNop())
	t.Cleanup(func() { indexer.Close() })
	_, search := bleveRepositories.NewBleveRepository(indexer)

	h := &harness{events: &recordingPublisher{}, queue: &stubQueue{}}
	h.ctrl = &ProposalController{
		Repo:   repositories.NewMemoryProposalRepository(),
		Docs:   docs,
		Search: search,
		Events: h.events,
		Queue:  h.queue,
	}

	h.app = fiber.New()
	user := func(c *fiber.Ctx) error {
		c.Locals("user", &token.Payload{ID: uuid.New(), UserID: uuid.New(), Username: "vendedor"})
		return c.Next()
	}
	api := h.app.Group("/api/v1")
	proposals := api.Group("/proposals", user)
	proposals.Get("/", h.ctrl.ListProposals)
	proposals.Post("/", h.ctrl.CreateProposal)
	proposals.Get("/export.xlsx", h.ctrl.ExportXLSX)
	proposals.Get("/:id", h.ctrl.GetProposal)
	proposals.Delete("/:id", h.ctrl.DeleteProposal)
	proposals.Get("/:id/pdf", h.ctrl.DownloadPDF)
	proposals.Post("/:id/email", h.ctrl.EmailProposal)
	return h
}

type envelope struct {
	Message string                 `json:"message"`
	Data    json.RawMessage        `json:"data"`
	Error   interface{}            `json:"error"`
	Details map[string]interface{} `json:"details"`
}

func (h *harness) do(t *testing.T, method, path string, body interface{}) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := h.app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, raw
}

func decode(t *testing.T, raw []byte) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(raw, &env))
	return env
}

func proposalBody(name string) map[string]interface{} {
	return map[string]interface{}{
		"customer_name":          name,
		"city_state":             "Recife/PE",
		"proposal_date":          "2025-12-15",
		"power_kwp":              4.27,
		"monthly_generation_kwh": 532,
		"usable_area_m2":         22.5,
		"module_model":           "Canadian Solar 535W",
		"module_quantity":        8,
		"inverter_model":         "Growatt MIN 3000TL-X",
		"inverter_quantity":      1,
		"total_price":            "11537.92",
	}
}

type createdProposal struct {
	ID           string `json:"id"`
	CustomerName string `json:"customer_name"`
	ProposalDate string `json:"proposal_date"`
	ValidityDays int    `json:"validity_days"`
	TotalPrice   string `json:"total_price"`
	CreatedBy    string `json:"created_by"`
}

func (h *harness) create(t *testing.T, name string) createdProposal {
	t.Helper()
	resp, raw := h.do(t, http.MethodPost, "/api/v1/proposals", proposalBody(name))
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(raw))
	var p createdProposal
	require.NoError(t, json.Unmarshal(decode(t, raw).Data, &p))
	return p
}

func TestCreateProposal(t *testing.T) {
	h := newHarness(t, services.DocumentOptions{})
	p := h.create(t, "  João Silva Santos ")

	assert.Equal(t, "João Silva Santos", p.CustomerName)
	assert.Equal(t, "2025-12-15", p.ProposalDate)
	assert.Equal(t, 4, p.ValidityDays)
	assert.Equal(t, "11537.92", p.TotalPrice)
	assert.Equal(t, "vendedor", p.CreatedBy)
	assert.Equal(t, []websocket.MessageType{websocket.MessageTypeProposalCreated}, h.events.kinds())

	doc, err := h.ctrl.Search.GetProposalDocument(p.ID)
	require.NoError(t, err)
	assert.Equal(t, "João Silva Santos", doc["customer_name"])
}

func TestCreateProposalValidation(t *testing.T) {
	h := newHarness(t, services.DocumentOptions{})

	body := proposalBody("")
	body["module_quantity"] = 0
	resp, raw := h.do(t, http.MethodPost, "/api/v1/proposals", body)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	env := decode(t, raw)
	assert.Equal(t, "Validation failed", env.Message)
	assert.Contains(t, env.Details, "customer_name")
	assert.Contains(t, env.Details, "module_quantity")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/proposals", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	resp, err := h.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, h.events.kinds())
}

func TestGetProposal(t *testing.T) {
	h := newHarness(t, services.DocumentOptions{})
	p := h.create(t, "Maria Oliveira")

	resp, raw := h.do(t, http.MethodGet, "/api/v1/proposals/"+p.ID, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var got createdProposal
	require.NoError(t, json.Unmarshal(decode(t, raw).Data, &got))
	assert.Equal(t, p.ID, got.ID)

	resp, _ = h.do(t, http.MethodGet, "/api/v1/proposals/"+uuid.NewString(), nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, _ = h.do(t, http.MethodGet, "/api/v1/proposals/not-a-uuid", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestListProposalsWithSearch(t *testing.T) {
	h := newHarness(t, services.DocumentOptions{})
	h.create(t, "João Silva Santos")
	h.create(t, "Maria Oliveira")
	h.create(t, "Pedro Silva")

	type page struct {
		Items      []createdProposal `json:"items"`
		Pagination struct {
			TotalItems int64 `json:"total_items"`
			TotalPages int   `json:"total_pages"`
		} `json:"pagination"`
	}

	resp, raw := h.do(t, http.MethodGet, "/api/v1/proposals?page_size=2", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var all page
	require.NoError(t, json.Unmarshal(decode(t, raw).Data, &all))
	assert.Len(t, all.Items, 2)
	assert.EqualValues(t, 3, all.Pagination.TotalItems)
	assert.Equal(t, 2, all.Pagination.TotalPages)

	resp, raw = h.do(t, http.MethodGet, "/api/v1/proposals?search=silva", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var silva page
	require.NoError(t, json.Unmarshal(decode(t, raw).Data, &silva))
	assert.EqualValues(t, 2, silva.Pagination.TotalItems)

	resp, raw = h.do(t, http.MethodGet, "/api/v1/proposals?search=ILVA", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var infix page
	require.NoError(t, json.Unmarshal(decode(t, raw).Data, &infix))
	assert.EqualValues(t, 2, infix.Pagination.TotalItems)

	h.ctrl.Search = nil
	resp, raw = h.do(t, http.MethodGet, "/api/v1/proposals?search=OLIV", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var oliv page
	require.NoError(t, json.Unmarshal(decode(t, raw).Data, &oliv))
	require.Len(t, oliv.Items, 1)
	assert.Equal(t, "Maria Oliveira", oliv.Items[0].CustomerName)

	resp, _ = h.do(t, http.MethodGet, "/api/v1/proposals?page=0", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestDeleteProposal(t *testing.T) {
	h := newHarness(t, services.DocumentOptions{})
	p := h.create(t, "João Silva")

	resp, _ := h.do(t, http.MethodDelete, "/api/v1/proposals/"+p.ID, nil)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	resp, _ = h.do(t, http.MethodDelete, "/api/v1/proposals/"+p.ID, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, _ = h.do(t, http.MethodDelete, "/api/v1/proposals/xyz", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	_, err := h.ctrl.Search.GetProposalDocument(p.ID)
	assert.Error(t, err)
	assert.Equal(t, []websocket.MessageType{
		websocket.MessageTypeProposalCreated,
		websocket.MessageTypeProposalDeleted,
	}, h.events.kinds())
}

func TestDownloadPDF(t *testing.T) {
	h := newHarness(t, services.DocumentOptions{})
	p := h.create(t, "João Silva Santos")

	resp, raw := h.do(t, http.MethodGet, "/api/v1/proposals/"+p.ID+"/pdf", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Equal(t,
		`attachment; filename="proposta_João_Silva_Santos.pdf"; filename*=UTF-8''proposta_Jo%C3%A3o_Silva_Santos.pdf`,
		resp.Header.Get("Content-Disposition"))
	assert.True(t, bytes.HasPrefix(raw, []byte("%PDF-")))

	rendered, ok := h.events.last(websocket.MessageTypeProposalRendered)
	require.True(t, ok)
	assert.Equal(t, p.ID, rendered.id)
	assert.Equal(t, "solar", rendered.payload.(fiber.Map)["variant"])

	resp, _ = h.do(t, http.MethodGet, "/api/v1/proposals/"+p.ID+"/pdf?variant=corporate", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	rendered, _ = h.events.last(websocket.MessageTypeProposalRendered)
	assert.Equal(t, "corporate", rendered.payload.(fiber.Map)["variant"])

	resp, _ = h.do(t, http.MethodGet, "/api/v1/proposals/"+p.ID+"/pdf?variant=nope", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = h.do(t, http.MethodGet, "/api/v1/proposals/"+uuid.NewString()+"/pdf", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestDownloadPDFEscapesQuotedFilename(t *testing.T) {
	h := newHarness(t, services.DocumentOptions{})
	p := h.create(t, `Ana "Sol" Lima`)

	resp, _ := h.do(t, http.MethodGet, "/api/v1/proposals/"+p.ID+"/pdf", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t,
		`attachment; filename="proposta_Ana_\"Sol\"_Lima.pdf"; filename*=UTF-8''proposta_Ana_%22Sol%22_Lima.pdf`,
		resp.Header.Get("Content-Disposition"))
}

func TestDownloadPDFRenderFailure(t *testing.T) {
	h := newHarness(t, services.DocumentOptions{LogoPath: filepath.Join(t.TempDir(), "missing.png")})
	p := h.create(t, "João Silva Santos")

	resp, raw := h.do(t, http.MethodGet, "/api/v1/proposals/"+p.ID+"/pdf", nil)
	require.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	assert.NotEqual(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Equal(t, "Failed to generate PDF", decode(t, raw).Message)
	assert.NotContains(t, h.events.kinds(), websocket.MessageTypeProposalRendered)
}

func TestExportXLSX(t *testing.T) {
	h := newHarness(t, services.DocumentOptions{})
	h.create(t, "João Silva Santos")
	h.create(t, "Maria Oliveira")

	resp, raw := h.do(t, http.MethodGet, "/api/v1/proposals/export.xlsx", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, `attachment; filename="propostas.xlsx"`, resp.Header.Get("Content-Disposition"))

	f, err := excelize.OpenReader(bytes.NewReader(raw))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Propostas")
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestEmailProposal(t *testing.T) {
	h := newHarness(t, services.DocumentOptions{})
	p := h.create(t, "João Silva Santos")
	path := "/api/v1/proposals/" + p.ID + "/email"

	resp, raw := h.do(t, http.MethodPost, path, map[string]string{"to": "joao@example.com", "variant": "corporate"})
	require.Equal(t, fiber.StatusAccepted, resp.StatusCode, string(raw))
	assert.JSONEq(t, `{"task_id":"task-42"}`, string(decode(t, raw).Data))
	require.Len(t, h.queue.tasks, 1)

	var payload services.EmailPayload
	require.NoError(t, json.Unmarshal(h.queue.tasks[0].Payload(), &payload))
	assert.Equal(t, services.EmailPayload{ProposalID: p.ID, To: "joao@example.com", Variant: "corporate"}, payload)
	assert.Contains(t, h.events.kinds(), websocket.MessageTypeEmailQueued)

	resp, raw = h.do(t, http.MethodPost, path, map[string]string{"to": "nope"})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, decode(t, raw).Details, "to")

	resp, _ = h.do(t, http.MethodPost, path, map[string]string{"to": "joao@example.com", "variant": "nope"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = h.do(t, http.MethodPost, "/api/v1/proposals/"+uuid.NewString()+"/email", map[string]string{"to": "joao@example.com"})
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	h.queue.err = errors.New("redis down")
	resp, _ = h.do(t, http.MethodPost, path, map[string]string{"to": "joao@example.com"})
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	h.ctrl.Queue = nil
	resp, _ = h.do(t, http.MethodPost, path, map[string]string{"to": "joao@example.com"})
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
}
