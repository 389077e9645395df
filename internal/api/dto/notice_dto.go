package dto

import "github.com/spec-kit/intranet-portal/internal/domain"

// NoticeCreateRequest is the body of POST /notices on the intranet API. An
// empty DataExpiracao lets the API apply its default of three days.
type NoticeCreateRequest struct {
	Titulo        string            `json:"titulo" form:"titulo"`
	Mensagem      string            `json:"mensagem" form:"mensagem"`
	Tipo          domain.NoticeType `json:"tipo" form:"tipo"`
	DataExpiracao string            `json:"data_expiracao,omitempty" form:"data_expiracao"`
}
