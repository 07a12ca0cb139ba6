package handlers

import "testing"

func TestParsePaginationParamsDefaults(t *testing.T) {
	page, limit, err := parsePaginationParams("", "")
	if err != nil {
		t.Fatalf("expected empty params to use defaults, got %v", err)
	}
	if page != 1 || limit != 20 {
		t.Fatalf("expected page=1 limit=20, got page=%d limit=%d", page, limit)
	}
}

func TestParsePaginationParamsParsesValues(t *testing.T) {
	page, limit, err := parsePaginationParams("3", "50")
	if err != nil {
		t.Fatalf("expected valid params to parse, got %v", err)
	}
	if page != 3 || limit != 50 {
		t.Fatalf("expected page=3 limit=50, got page=%d limit=%d", page, limit)
	}
}

func TestParsePaginationParamsRejectsBadValues(t *testing.T) {
	cases := []struct {
		name     string
		pageStr  string
		limitStr string
	}{
		{"zero page", "0", "20"},
		{"negative page", "-1", "20"},
		{"non-numeric page", "abc", "20"},
		{"zero limit", "1", "0"},
		{"non-numeric limit", "1", "lots"},
	}
	for _, tc := range cases {
		_, _, err := parsePaginationParams(tc.pageStr, tc.limitStr)
		if err == nil {
			t.Fatalf("%s: expected an error", tc.name)
		}
		// The error must carry a printable message; a zero-valued wrapper
		// type here once panicked inside Error().
		if err.Error() == "" {
			t.Fatalf("%s: expected a non-empty error message", tc.name)
		}
	}
}
