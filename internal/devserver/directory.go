package devserver

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/spec-kit/intranet-portal/internal/auth"
	"github.com/spec-kit/intranet-portal/internal/domain"
)

// defaultNoticeTTL applies when a notice is posted without data_expiracao.
const defaultNoticeTTL = 72 * time.Hour

var (
	errInvalidCredentials = errors.New("invalid credentials")
	errInactiveUser       = errors.New("inactive user")
	errUserNotFound       = errors.New("user not found")
	errEmailTaken         = errors.New("email already registered")
	errNoticeNotFound     = errors.New("notice not found")
	errBadExpiry          = errors.New("invalid expiry date")
)

type account struct {
	user         domain.UserRecord
	passwordHash string
}

// Directory is the in-memory user and notice store of the development API.
type Directory struct {
	mu           sync.RWMutex
	bcryptCost   int
	now          func() time.Time
	users        map[int64]*account
	nextID       int64
	notices      []domain.Notice
	nextNoticeID int64
}

// NewDirectory returns an empty directory.
func NewDirectory(bcryptCost int) *Directory {
	return &Directory{
		bcryptCost:   bcryptCost,
		now:          time.Now,
		users:        make(map[int64]*account),
		nextID:       1,
		nextNoticeID: 1,
	}
}

// NewSeededDirectory returns a directory with one user per role plus an
// inactive account, all sharing password.
func NewSeededDirectory(bcryptCost int, password string) (*Directory, error) {
	d := NewDirectory(bcryptCost)
	seed := []domain.UserRecord{
		{Nome: "Ana Souza", Email: "a@x.com", Role: domain.RoleAdmin, Departamento: "Diretoria", Ativo: true},
		{Nome: "Bea Lima", Email: "bea@x.com", Role: domain.RoleSuporte, Departamento: "TI", Ativo: true},
		{Nome: "Caio Melo", Email: "caio@x.com", Role: domain.RoleUsuarioComum, Departamento: "Financeiro", Ativo: true},
		{Nome: "Davi Rocha", Email: "davi@x.com", Role: domain.RoleUsuarioComum, Departamento: "Comercial", Ativo: false},
	}
	for _, u := range seed {
		if _, err := d.AddUser(u, password); err != nil {
			return nil, err
		}
	}
	if _, err := d.AddNotice(domain.Notice{
		Titulo:   "Bem-vindo à intranet",
		Mensagem: "Use o menu para navegar.",
		Tipo:     domain.NoticeGeral,
	}, "Ana Souza"); err != nil {
		return nil, err
	}
	return d, nil
}

// findByEmail must be called with mu held.
func (d *Directory) findByEmail(email string) (*account, bool) {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, acc := range d.users {
		if strings.ToLower(acc.user.Email) == email {
			return acc, true
		}
	}
	return nil, false
}

// AddUser registers u with password and assigns it an id.
func (d *Directory) AddUser(u domain.UserRecord, password string) (domain.UserRecord, error) {
	hash, err := auth.HashPassword(password, d.bcryptCost)
	if err != nil {
		return domain.UserRecord{}, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if _, taken := d.findByEmail(u.Email); taken {
		return domain.UserRecord{}, errEmailTaken
	}
	u.ID = d.nextID
	d.nextID++
	d.users[u.ID] = &account{user: u, passwordHash: hash}
	return u, nil
}

// Authenticate checks email and password.
func (d *Directory) Authenticate(email, password string) (domain.UserRecord, error) {
	d.mu.RLock()
	acc, ok := d.findByEmail(email)
	var user domain.UserRecord
	var hash string
	if ok {
		user, hash = acc.user, acc.passwordHash
	}
	d.mu.RUnlock()
	if !ok {
		return domain.UserRecord{}, errInvalidCredentials
	}
	if err := auth.ComparePassword(hash, password); err != nil {
		return domain.UserRecord{}, errInvalidCredentials
	}
	if !user.Ativo {
		return domain.UserRecord{}, errInactiveUser
	}
	return user, nil
}

// UpdateProfile changes the name and, when senha is set, the password of
// the user with id.
func (d *Directory) UpdateProfile(id int64, nome, senha string) (domain.UserRecord, error) {
	hash, err := d.optionalHash(senha)
	if err != nil {
		return domain.UserRecord{}, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	acc, ok := d.users[id]
	if !ok {
		return domain.UserRecord{}, errUserNotFound
	}
	acc.user.Nome = nome
	if hash != "" {
		acc.passwordHash = hash
	}
	return acc.user, nil
}

// UpdateUser replaces the editable fields of the user with id. The active
// flag is managed by SetActive; an empty senha keeps the password.
func (d *Directory) UpdateUser(id int64, u domain.UserRecord, senha string) (domain.UserRecord, error) {
	hash, err := d.optionalHash(senha)
	if err != nil {
		return domain.UserRecord{}, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	acc, ok := d.users[id]
	if !ok {
		return domain.UserRecord{}, errUserNotFound
	}
	if other, taken := d.findByEmail(u.Email); taken && other != acc {
		return domain.UserRecord{}, errEmailTaken
	}
	acc.user.Nome = u.Nome
	acc.user.Email = u.Email
	acc.user.Departamento = u.Departamento
	acc.user.Role = u.Role
	if hash != "" {
		acc.passwordHash = hash
	}
	return acc.user, nil
}

// SetActive flips the active flag of the user with id.
func (d *Directory) SetActive(id int64, ativo bool) (domain.UserRecord, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	acc, ok := d.users[id]
	if !ok {
		return domain.UserRecord{}, errUserNotFound
	}
	acc.user.Ativo = ativo
	return acc.user, nil
}

// DeleteUser removes the user with id.
func (d *Directory) DeleteUser(id int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.users[id]; !ok {
		return errUserNotFound
	}
	delete(d.users, id)
	return nil
}

func (d *Directory) optionalHash(senha string) (string, error) {
	if senha == "" {
		return "", nil
	}
	return auth.HashPassword(senha, d.bcryptCost)
}

// Users lists every account ordered by id.
func (d *Directory) Users() []domain.UserRecord {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]domain.UserRecord, 0, len(d.users))
	for _, acc := range d.users {
		out = append(out, acc.user)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// AddNotice posts n on behalf of autor. Tipo defaults to Geral and an empty
// expiry to three days from now.
func (d *Directory) AddNotice(n domain.Notice, autor string) (domain.Notice, error) {
	if n.Tipo == "" {
		n.Tipo = domain.NoticeGeral
	}
	if n.DataExpiracao == "" {
		n.DataExpiracao = d.now().Add(defaultNoticeTTL).UTC().Format(time.RFC3339)
	} else if _, err := parseExpiry(n.DataExpiracao); err != nil {
		return domain.Notice{}, err
	}
	n.Autor = &domain.NoticeAuthor{Nome: autor}

	d.mu.Lock()
	defer d.mu.Unlock()
	n.ID = d.nextNoticeID
	d.nextNoticeID++
	d.notices = append(d.notices, n)
	return n, nil
}

// DeleteNotice removes the notice with id.
func (d *Directory) DeleteNotice(id int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, n := range d.notices {
		if n.ID == id {
			d.notices = append(d.notices[:i], d.notices[i+1:]...)
			return nil
		}
	}
	return errNoticeNotFound
}

// Notices lists the notices that have not expired yet, newest first.
func (d *Directory) Notices() []domain.Notice {
	now := d.now()
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]domain.Notice, 0, len(d.notices))
	for i := len(d.notices) - 1; i >= 0; i-- {
		n := d.notices[i]
		if exp, err := parseExpiry(n.DataExpiracao); err == nil && !now.Before(exp) {
			continue
		}
		out = append(out, n)
	}
	return out
}

// parseExpiry accepts an RFC 3339 timestamp or a plain date, which expires
// at the end of that day in UTC.
func parseExpiry(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t.Add(24 * time.Hour), nil
	}
	return time.Time{}, errBadExpiry
}

// User returns the user with id.
func (d *Directory) User(id int64) (domain.UserRecord, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	acc, ok := d.users[id]
	if !ok {
		return domain.UserRecord{}, errUserNotFound
	}
	return acc.user, nil
}
