package domain

import "testing"

func TestParseRole(t *testing.T) {
	tests := []struct {
		raw  string
		want Role
		ok   bool
	}{
		{"Admin", RoleAdmin, true},
		{"Suporte", RoleSuporte, true},
		{"UsuarioComum", RoleUsuarioComum, true},
		{"Usuario Comum", RoleUsuarioComum, true},
		{"Usuário Comum", RoleUsuarioComum, true},
		{"root", Role("root"), false},
		{"", Role(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := ParseRole(tt.raw)
			if got != tt.want || ok != tt.ok {
				t.Fatalf("ParseRole(%q) = %q,%v; want %q,%v", tt.raw, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestSessionStateValid(t *testing.T) {
	cred := &Credential{Token: "t1", User: UserRecord{ID: 1, Nome: "Ana", Role: RoleAdmin}}

	tests := []struct {
		name  string
		state SessionState
		want  bool
	}{
		{"initializing without credential", SessionState{Status: SessionInitializing}, true},
		{"unauthenticated without credential", SessionState{Status: SessionUnauthenticated}, true},
		{"authenticated with credential", SessionState{Status: SessionAuthenticated, Credential: cred}, true},
		{"authenticated without credential", SessionState{Status: SessionAuthenticated}, false},
		{"authenticated with empty token", SessionState{Status: SessionAuthenticated, Credential: &Credential{}}, false},
		{"unauthenticated with credential", SessionState{Status: SessionUnauthenticated, Credential: cred}, false},
		{"initializing with credential", SessionState{Status: SessionInitializing, Credential: cred}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.Valid(); got != tt.want {
				t.Fatalf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWithNomeKeepsOtherFields(t *testing.T) {
	u := UserRecord{ID: 7, Nome: "Bea", Email: "bea@x.com", Role: RoleSuporte, Departamento: "TI", Ativo: true}
	got := u.WithNome("Beatriz")
	if got.Nome != "Beatriz" {
		t.Fatalf("expected new name, got %q", got.Nome)
	}
	got.Nome = u.Nome
	if got != u {
		t.Fatalf("other fields changed: %+v", got)
	}
}
