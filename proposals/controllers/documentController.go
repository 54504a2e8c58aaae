package controllers

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"solar-proposal-backend/config"
	"solar-proposal-backend/internal/metrics"
	"solar-proposal-backend/proposals/services"
	"solar-proposal-backend/websocket"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// DownloadPDF streams the rendered proposal. Render failures are detected
// before any header is written and answered with a 500.
func (pc *ProposalController) DownloadPDF(c *fiber.Ctx) error {
	proposal, err := pc.loadProposal(c)
	if proposal == nil {
		return err
	}

	variant, err := pc.Docs.ResolveVariant(c.Query("variant"))
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid variant", err.Error())
	}

	stream, err := pc.Docs.Render(c.UserContext(), proposal, variant)
	if err != nil {
		if errors.Is(err, services.ErrUnknownVariant) {
			return errorResponse(c, fiber.StatusBadRequest, "Invalid variant", err.Error())
		}
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to generate PDF", "The proposal document could not be rendered.")
	}

	pc.publish(websocket.MessageTypeProposalRendered, proposal.ID.String(), fiber.Map{
		"id":      proposal.ID.String(),
		"variant": variant,
	})

	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, attachment(services.Filename(proposal.CustomerName)))
	return c.SendStream(stream)
}

// attachment builds a Content-Disposition value. The quoted filename has its
// quotes and backslashes escaped; filename* carries the exact UTF-8 name
// percent-encoded (RFC 5987).
func attachment(filename string) string {
	quoted := strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(filename)
	return fmt.Sprintf(`attachment; filename="%s"; filename*=UTF-8''%s`, quoted, encodeExtValue(filename))
}

func encodeExtValue(s string) string {
	var b strings.Builder
	for _, c := range []byte(s) {
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
			b.WriteByte(c)
		case strings.IndexByte("!#$&+-.^_`|~", c) >= 0:
			b.WriteByte(c)
		default:
			fmt.Fprintf(&b, "%%%02X", c)
		}
	}
	return b.String()
}

func (pc *ProposalController) ExportXLSX(c *fiber.Ctx) error {
	proposals, err := pc.Repo.GetAllProposals()
	if err != nil {
		config.Logger.Error("Failed to load proposals for export", zap.Error(err))
		return errorResponse(c, fiber.StatusInternalServerError, "Something went wrong", "An internal server error occurred.")
	}

	var buf bytes.Buffer
	if err := services.WriteProposalsXLSX(&buf, proposals); err != nil {
		config.Logger.Error("Failed to build proposals workbook", zap.Error(err))
		return errorResponse(c, fiber.StatusInternalServerError, "Export failed", "The workbook could not be generated.")
	}

	metrics.IncProposal("export")
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="propostas.xlsx"`)
	return c.Send(buf.Bytes())
}
