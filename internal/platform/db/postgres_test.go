package db

import "testing"

func TestConnectRejectsBlankDSN(t *testing.T) {
	for _, dsn := range []string{"", "   ", "\t\n"} {
		if _, err := Connect(dsn); err == nil {
			t.Fatalf("expected error for dsn %q", dsn)
		}
	}
}

func TestCloseOnNilHandle(t *testing.T) {
	var p *Postgres
	if err := p.Close(); err != nil {
		t.Fatalf("expected nil close on nil handle, got %v", err)
	}
	if err := (&Postgres{}).Close(); err != nil {
		t.Fatalf("expected nil close on empty handle, got %v", err)
	}
}
