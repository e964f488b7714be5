package repositorycache

import "testing"

func TestToSnake(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"User", "user"},
		{"testUser", "test_user"},
		{"OrderLineItem", "order_line_item"},
		{"HTTPServer", "http_server"},
		{"userID", "user_id"},
		{"already_snake", "already_snake"},
		{"*pkg.User", "pkg_user"},
		{"Typed[int]", "typed_int"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := toSnake(tt.in); got != tt.want {
			t.Errorf("toSnake(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTypeNamespace(t *testing.T) {
	if got := typeNamespace[*testUser](); got != "test_user" {
		t.Errorf("typeNamespace[*testUser] = %q, want %q", got, "test_user")
	}
	if got := typeNamespace[int](); got != "int" {
		t.Errorf("typeNamespace[int] = %q, want %q", got, "int")
	}
}
