package domain

// NoticeType selects how a notice is highlighted on the board.
type NoticeType string

const (
	NoticeGeral      NoticeType = "Geral"
	NoticeImportante NoticeType = "Importante"
	NoticeManutencao NoticeType = "Manutencao"
)

// Known reports whether t is one of the board's notice types.
func (t NoticeType) Known() bool {
	switch t {
	case NoticeGeral, NoticeImportante, NoticeManutencao:
		return true
	}
	return false
}

// NoticeAuthor is the author snapshot embedded in a notice.
type NoticeAuthor struct {
	Nome string `json:"nome"`
}

// Notice is an entry of the intranet notice board. DataExpiracao is kept as
// the API sends it (a date or a timestamp).
type Notice struct {
	ID            int64         `json:"id"`
	Titulo        string        `json:"titulo"`
	Mensagem      string        `json:"mensagem"`
	Tipo          NoticeType    `json:"tipo"`
	DataExpiracao string        `json:"data_expiracao"`
	Autor         *NoticeAuthor `json:"autor,omitempty"`
}
