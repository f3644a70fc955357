package http

import (
	"github.com/jhoicas/stock-oracle-api/internal/application/dto"
	"github.com/jhoicas/stock-oracle-api/internal/application/tools"
	"github.com/jhoicas/stock-oracle-api/internal/domain/entity"
)

func shortageDTOs(shortages []entity.Shortage) []dto.ShortageDTO {
	if len(shortages) == 0 {
		return nil
	}
	out := make([]dto.ShortageDTO, 0, len(shortages))
	for _, s := range shortages {
		out = append(out, dto.ShortageDTO{ProductID: s.ProductID, ProductName: s.ProductName, Needed: s.Needed, Available: s.Available})
	}
	return out
}

func moveDTO(v tools.OperationView) dto.MoveDTO {
	out := dto.MoveDTO{
		ID:           v.ID,
		Reference:    v.Reference,
		Type:         string(v.Type),
		Status:       string(v.Status),
		Origin:       string(v.Origin),
		FromLocation: v.From,
		ToLocation:   v.To,
		Counterparty: v.Counterparty,
		Reason:       v.Reason,
		Lines:        make([]dto.MoveLineDTO, 0, len(v.Lines)),
		Shortages:    shortageDTOs(v.Shortages),
		CreatedAt:    v.CreatedAt,
		CompletedAt:  v.CompletedAt,
	}
	for _, l := range v.Lines {
		out.Lines = append(out.Lines, dto.MoveLineDTO{
			ProductID:         l.ProductID,
			ProductName:       l.ProductName,
			RequestedQuantity: l.Requested,
			DoneQuantity:      l.Done,
		})
	}
	return out
}

func conversationDTO(c *entity.Conversation) dto.ConversationDTO {
	out := dto.ConversationDTO{
		ID:        c.ID,
		Title:     c.Title,
		Messages:  make([]dto.ChatMessageDTO, 0, len(c.Messages)),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
	for _, m := range c.Messages {
		out.Messages = append(out.Messages, dto.ChatMessageDTO{Role: m.Role, Content: m.Content, Timestamp: m.Timestamp})
	}
	return out
}
