package preprocessing

import "testing"

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"already clean", "age", "age"},
		{"mixed case and digits", "Education_Num2", "Education_Num2"},
		{"spaces", "hours per week", "hours_per_week"},
		{"punctuation", "native-country", "native_country"},
		{"repeated separators collapse", "a--b__c  d", "a_b_c_d"},
		{"leading and trailing trimmed", "--income>50K--", "income_50K"},
		{"unicode replaced", "pays·état", "pays_tat"},
		{"only punctuation", "?!--", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeName(tt.in); got != tt.want {
				t.Errorf("SanitizeName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSanitizeNameIdempotent(t *testing.T) {
	inputs := []string{
		"age", "native-country", "hours per week", "a--b__c",
		"--income>50K--", "?!", "", "workclass=Self-emp-not-inc",
		"日本語カラム名", "x1_x2_x3", "  spaced  ",
	}
	for _, in := range inputs {
		once := SanitizeName(in)
		twice := SanitizeName(once)
		if once != twice {
			t.Errorf("not idempotent for %q: once=%q twice=%q", in, once, twice)
		}
	}
}
