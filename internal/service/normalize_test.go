package service

import "testing"

// ── Normalize 测试 ──

func TestNormalize_CaseAndWhitespace(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Demographics Table", "DEMOGRAPHICSTABLE"},
		{"  demographics   table  ", "DEMOGRAPHICSTABLE"},
		{"DEMOGRAPHICS\tTABLE", "DEMOGRAPHICSTABLE"},
		{"demo\ngraphics", "DEMOGRAPHICS"},
		{"", ""},
		{"   ", ""},
		{"ADSL", "ADSL"},
	}
	for _, c := range cases {
		if got := Normalize(c.in); got != c.want {
			t.Errorf("Normalize(%q) 期望 %q，实际 %q", c.in, c.want, got)
		}
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{"Demographics Table", "T 14.1.1", "adsl demo"}
	for _, in := range inputs {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize 应幂等: Normalize(%q)=%q，再次=%q", in, once, twice)
		}
	}
}

func TestNormalize_InternalWhitespaceInsensitive(t *testing.T) {
	// 内部空白差异不应产生不同键
	if Normalize("Safety  Population") != Normalize("Safety Population") {
		t.Error("内部空白差异应规范化为同一键")
	}
}

// ── isElementIDRef 测试 ──

func TestIsElementIDRef(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"42", true},
		{"0", true},
		{"550e8400-e29b-41d4-a716-446655440000", true},
		{"Safety Population", false},
		{"14.1.1", false},
		{"42a", false},
		{"", false},
	}
	for _, c := range cases {
		if got := isElementIDRef(c.in); got != c.want {
			t.Errorf("isElementIDRef(%q) 期望 %v，实际 %v", c.in, c.want, got)
		}
	}
}

// ── isBlankOrNA 测试 ──

func TestIsBlankOrNA(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"", true},
		{"   ", true},
		{"NA", true},
		{"na", true},
		{"N/A", true},
		{"n/a", true},
		{"ADSL", false},
		{"NAB", false},
	}
	for _, c := range cases {
		if got := isBlankOrNA(c.in); got != c.want {
			t.Errorf("isBlankOrNA(%q) 期望 %v，实际 %v", c.in, c.want, got)
		}
	}
}
