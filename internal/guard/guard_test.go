package guard

import "testing"

func TestAuthorize(t *testing.T) {
	tests := []struct {
		name    string
		role    string
		allowed []string
		want    Decision
	}{
		{"guest denied", "guest", []string{"admin"}, Decision{Redirect: "/unauthorized"}},
		{"admin allowed", "admin", []string{"admin"}, Decision{Allow: true}},
		{"one of many", "vendedor", []string{"admin", "vendedor"}, Decision{Allow: true}},
		{"empty role denied", "", []string{"admin"}, Decision{Redirect: "/unauthorized"}},
		{"case sensitive", "Admin", []string{"admin"}, Decision{Redirect: "/unauthorized"}},
		{"nothing allowed", "admin", nil, Decision{Redirect: "/unauthorized"}},
		{"guest explicitly allowed", RoleGuest, []string{RoleGuest}, Decision{Allow: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Authorize(tt.role, tt.allowed...)
			if got != tt.want {
				t.Errorf("Authorize(%q, %v) = %+v, want %+v", tt.role, tt.allowed, got, tt.want)
			}
		})
	}
}

func TestAuthorize_ReevaluatedEachCall(t *testing.T) {
	if !Authorize("admin", "admin").Allow {
		t.Fatal("admin should be allowed")
	}
	if Authorize("guest", "admin").Allow {
		t.Fatal("a role change must take effect on the next call")
	}
}
