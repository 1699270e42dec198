package telegram

import (
	"errors"
	"testing"
)

func TestParseUser(t *testing.T) {
	u, err := ParseUser(`query_id=1&user={"id":77,"first_name":"Ivan","username":"ivan"}&auth_date=1`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if u.ID != 77 || u.DisplayName() != "Ivan" {
		t.Fatalf("user = %+v", u)
	}

	for _, in := range []string{"auth_date=1", `user={"first_name":"NoID"}`} {
		if _, err := ParseUser(in); !errors.Is(err, ErrNoUser) {
			t.Errorf("ParseUser(%q) err = %v; want ErrNoUser", in, err)
		}
	}
	if _, err := ParseUser(`user={broken`); err == nil {
		t.Errorf("broken json accepted")
	}
}

func TestDisplayName(t *testing.T) {
	cases := []struct {
		u    WebAppUser
		want string
	}{
		{WebAppUser{FirstName: " Anna "}, "Anna"},
		{WebAppUser{Username: "racer"}, "@racer"},
		{WebAppUser{}, "Player"},
	}
	for _, tc := range cases {
		if got := tc.u.DisplayName(); got != tc.want {
			t.Errorf("DisplayName(%+v) = %q; want %q", tc.u, got, tc.want)
		}
	}
}
