package svn

import "testing"

func TestParseRevision(t *testing.T) {
	tests := []struct {
		out    string
		want   int
		wantOK bool
	}{
		{"42\n", 42, true},
		{"Committed revision 42.", 42, true},
		{"0\n", 0, true},
		{"r1234 | alice", 0, false},
		{"r42", 0, false},
		{"r42 is 43", 43, true},
		{"revision 7 of 9", 7, true},
		{"", 0, false},
		{"svnlook: E000002: no such file", 0, false},
		{"not a repository", 0, false},
		{"99999999999999999999999", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.out, func(t *testing.T) {
			got, ok := ParseRevision(tt.out)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("ParseRevision(%q) = %d, %v; want %d, %v", tt.out, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestLabel(t *testing.T) {
	tests := []struct {
		rev  int
		want string
	}{
		{0, "v0000000"},
		{42, "v0000042"},
		{1234567, "v1234567"},
		{12345678, "v12345678"},
	}
	for _, tt := range tests {
		if got := Label(tt.rev); got != tt.want {
			t.Errorf("Label(%d) = %q, want %q", tt.rev, got, tt.want)
		}
		rev, ok := ParseLabel(tt.want)
		if !ok || rev != tt.rev {
			t.Errorf("ParseLabel(%q) = %d, %v; want %d, true", tt.want, rev, ok, tt.rev)
		}
	}
}

func TestParseLabel_Rejects(t *testing.T) {
	for _, name := range []string{"", "v", "v42", "x0000042", "v00000a2", "v0000042.zip", "V0000042", "v012345678", ".v0000042.zip.tmp"} {
		if _, ok := ParseLabel(name); ok {
			t.Errorf("ParseLabel(%q) should fail", name)
		}
	}
}

func TestLabel_SortsLikeRevision(t *testing.T) {
	revs := []int{1, 9, 10, 99, 100, 1000000}
	for i := 1; i < len(revs); i++ {
		if Label(revs[i-1]) >= Label(revs[i]) {
			t.Errorf("Label(%d) should sort before Label(%d)", revs[i-1], revs[i])
		}
	}
}
